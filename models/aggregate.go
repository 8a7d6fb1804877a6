package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RegionRecords holds the records of one region in discovery order
type RegionRecords struct {
	Name    string
	Records []Record
}

// Stats summarizes a run
type Stats struct {
	Regions int
	Links   int
	Records int
	Skipped int
}

// AggregateResult is the region-keyed result of a run. Region order and
// record order follow the portal page.
type AggregateResult struct {
	Regions []RegionRecords
	Stats   Stats
}

// Len returns the total number of records
func (a *AggregateResult) Len() int {
	n := 0
	for _, r := range a.Regions {
		n += len(r.Records)
	}
	return n
}

// Region returns the records of the named region
func (a *AggregateResult) Region(name string) ([]Record, bool) {
	for _, r := range a.Regions {
		if r.Name == name {
			return r.Records, true
		}
	}
	return nil, false
}

// MarshalJSON writes the result as an object keyed by region name, keeping
// discovery order of the keys
func (a *AggregateResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, region := range a.Regions {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(region.Name)
		if err != nil {
			return nil, err
		}
		records := region.Records
		if records == nil {
			records = []Record{}
		}
		value, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal region %s: %w", region.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a document written by MarshalJSON, preserving key order
func (a *AggregateResult) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	a.Regions = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected region name, got %v", tok)
		}
		var records []Record
		if err := dec.Decode(&records); err != nil {
			return fmt.Errorf("failed to decode region %s: %w", name, err)
		}
		if records == nil {
			records = []Record{}
		}
		a.Regions = append(a.Regions, RegionRecords{Name: name, Records: records})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	a.Stats = Stats{Regions: len(a.Regions), Records: a.Len()}
	return nil
}
