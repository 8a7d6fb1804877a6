package parser

import "fmt"

// PageStructureError reports an expected container or element missing from
// a page, usually because the wiki markup changed
type PageStructureError struct {
	URL     string
	Element string
}

func (e *PageStructureError) Error() string {
	return fmt.Sprintf("page %s: %s not found", e.URL, e.Element)
}

// RowStructureError reports a roster row that cannot be read
type RowStructureError struct {
	URL    string
	Row    int
	Cells  int
	Want   int
	Reason string
}

func (e *RowStructureError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("page %s: roster row %d: %s", e.URL, e.Row, e.Reason)
	}
	return fmt.Sprintf("page %s: roster row %d has %d cells, want at least %d", e.URL, e.Row, e.Cells, e.Want)
}

// FieldParseError reports a profile value that is present but fails its transform
type FieldParseError struct {
	Key   string
	Value string
	Err   error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("field %q: cannot parse %q: %v", e.Key, e.Value, e.Err)
}

func (e *FieldParseError) Unwrap() error {
	return e.Err
}
