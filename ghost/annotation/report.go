package annotation

import (
	"encoding/json"
	"fmt"
)

// Report summarises one annotation run. Emitted once per run to sinks.
type Report struct {
	ID        string  `json:"id"` // UUIDv7
	PageURL   string  `json:"page_url,omitempty"`
	Timestamp int64   `json:"timestamp"` // epoch milliseconds
	Marked    int     `json:"marked"`    // distinct elements consumed by a rule
	Rendered  int     `json:"rendered"`  // overlays actually drawn
	Entries   []Entry `json:"entries"`
}

// Entry is one classified element.
type Entry struct {
	Label    string `json:"label"`
	Category string `json:"category"`
	Color    string `json:"color"`
	Border   string `json:"border"`
	Path     string `json:"path"`
	Rect     Rect   `json:"rect"`
	Rendered bool   `json:"rendered"`
}

// CountByCategory tallies entries per category id.
func (r *Report) CountByCategory() map[string]int {
	out := make(map[string]int, len(Categories))
	for _, e := range r.Entries {
		out[e.Category]++
	}
	return out
}

// MarshalReport serialises a Report to JSON.
func MarshalReport(r *Report) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalReport deserialises a Report from JSON.
func UnmarshalReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("annotation: unmarshal report: %w", err)
	}
	return &r, nil
}
