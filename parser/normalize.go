package parser

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

const nbsp = "\u00a0"

// normalizeWhitespace replaces various unicode whitespace characters with regular spaces
func normalizeWhitespace(text string) string {
	// Replace non-breaking spaces and other unicode whitespace with regular spaces
	normalized := strings.Builder{}
	for _, r := range text {
		if unicode.IsSpace(r) {
			normalized.WriteRune(' ')
		} else {
			normalized.WriteRune(r)
		}
	}
	// Collapse multiple spaces into one
	return strings.Join(strings.Fields(normalized.String()), " ")
}

// stripNBSP removes non-breaking spaces and trims the rest
func stripNBSP(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, nbsp, ""))
}

// splitNames splits a multi-person cell on non-breaking spaces. The first
// segment is the label artifact in front of the first flag and is dropped.
func splitNames(text string) []string {
	parts := strings.Split(text, nbsp)
	names := make([]string, 0, len(parts))
	for _, part := range parts[1:] {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// parseWinnings turns "$1,234,567" into 1234567
func parseWinnings(text string) (int, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", nbsp, "", " ", "").Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return 0, errors.New("empty amount")
	}
	return strconv.Atoi(cleaned)
}

// trailingRunes returns the last n runes of text
func trailingRunes(text string, n int) (string, error) {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) < n {
		return "", fmt.Errorf("value shorter than %d characters", n)
	}
	return string(runes[len(runes)-n:]), nil
}

// runeWindow returns up to length runes of text starting at offset
func runeWindow(text string, offset, length int) string {
	runes := []rune(text)
	if offset >= len(runes) {
		return ""
	}
	end := offset + length
	if end > len(runes) {
		end = len(runes)
	}
	return strings.TrimSpace(string(runes[offset:end]))
}

// resolveURL makes href absolute against the page it was found on
func resolveURL(pageURL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", href, err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

type labelValue struct {
	Label string
	Value string
}

// pairCells zips an alternating label/value sequence. A trailing label
// without a value is dropped.
func pairCells(cells []string) []labelValue {
	pairs := make([]labelValue, 0, len(cells)/2)
	for i := 0; i+1 < len(cells); i += 2 {
		pairs = append(pairs, labelValue{Label: cells[i], Value: cells[i+1]})
	}
	return pairs
}
