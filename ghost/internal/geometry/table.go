package geometry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"golang.org/x/net/html"
)

// Table is a Source keyed by element path (see dom.Path). It lets geometry
// captured from a live browser be replayed against a saved HTML file.
// Unknown paths measure as zero and are skipped downstream.
type Table struct {
	Height float64         `json:"scroll_height"`
	Rects  map[string]Rect `json:"rects"`
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{Rects: make(map[string]Rect)}
}

func (t *Table) RectOf(n *html.Node) Rect {
	return t.Rects[dom.Path(n)]
}

func (t *Table) ScrollHeight() float64 { return t.Height }

// Record stores r under the path of n.
func (t *Table) Record(n *html.Node, r Rect) {
	t.Rects[dom.Path(n)] = r
}

// LoadTable reads a JSON geometry table.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("geometry: read table: %w", err)
	}
	t := NewTable()
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("geometry: parse table %s: %w", path, err)
	}
	if t.Rects == nil {
		t.Rects = make(map[string]Rect)
	}
	return t, nil
}

// Save writes the table as indented JSON.
func (t *Table) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("geometry: marshal table: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("geometry: write table: %w", err)
	}
	return nil
}

// Recorder wraps a source and copies every measurement into a Table.
type Recorder struct {
	src   Source
	Table *Table
}

// NewRecorder wraps src.
func NewRecorder(src Source) *Recorder {
	return &Recorder{src: src, Table: NewTable()}
}

func (r *Recorder) RectOf(n *html.Node) Rect {
	rect := r.src.RectOf(n)
	r.Table.Record(n, rect)
	return rect
}

func (r *Recorder) ScrollHeight() float64 {
	var h float64
	if e, ok := r.src.(Extent); ok {
		h = e.ScrollHeight()
	}
	r.Table.Height = h
	return h
}
