package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"liquipedia-scraper/logging"
	"liquipedia-scraper/models"

	"github.com/kennygrant/sanitize"
)

// DocumentName is the file name of the aggregate document inside the output directory
const DocumentName = "teams.json"

// FileStore writes the aggregate document and team logos below one directory
type FileStore struct {
	dir string
}

// NewFileStore creates a new FileStore instance
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// DocumentPath returns where WriteDocument puts the aggregate document
func (fs *FileStore) DocumentPath() string {
	return filepath.Join(fs.dir, DocumentName)
}

// AssetPath returns where WriteAsset puts the asset of a team
func (fs *FileStore) AssetPath(region, displayName, ext string) string {
	return filepath.Join(fs.dir, safeName(region), safeName(displayName)+ext)
}

// WriteDocument writes the result as indented JSON. The previous document is
// replaced only once the new one is completely on disk.
func (fs *FileStore) WriteDocument(ctx context.Context, result *models.AggregateResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := writeFileAtomic(fs.DocumentPath(), data); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	logging.L().Infof("Wrote %d teams to %s", result.Len(), fs.DocumentPath())
	return nil
}

// WriteAsset writes data to <dir>/<region>/<displayName><ext>
func (fs *FileStore) WriteAsset(ctx context.Context, data []byte, region, displayName, ext string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := fs.AssetPath(region, displayName, ext)
	if err := writeFileAtomic(target, data); err != nil {
		return fmt.Errorf("failed to write asset for %s: %w", displayName, err)
	}
	return nil
}

// safeName turns a wiki title into a single path element
func safeName(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	cleaned := strings.Trim(sanitize.BaseName(sanitize.Accents(name)), ".-")
	if cleaned == "" {
		return "unnamed"
	}
	return cleaned
}

func writeFileAtomic(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
