package store

import (
	"context"
	"mime"
	"net/url"
	"path"
	"strings"

	"liquipedia-scraper/models"
)

// DocumentWriter persists the aggregate result of a run
type DocumentWriter interface {
	WriteDocument(ctx context.Context, result *models.AggregateResult) error
}

// AssetWriter persists one binary asset belonging to a team
type AssetWriter interface {
	WriteAsset(ctx context.Context, data []byte, region, displayName, ext string) error
}

// DefaultExtension is used when neither the URL nor the content type names a format
const DefaultExtension = ".png"

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// Extension picks the file extension of a downloaded asset from its URL,
// then from its content type
func Extension(assetURL, contentType string) string {
	if u, err := url.Parse(assetURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); imageExtensions[ext] {
			return ext
		}
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "image/png":
			return ".png"
		case "image/jpeg":
			return ".jpg"
		case "image/svg+xml":
			return ".svg"
		}
		if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}

	return DefaultExtension
}
