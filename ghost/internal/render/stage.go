// Package render draws annotation boxes into a shared, click-through layer
// (the stage) appended to the document body.
package render

import (
	"strconv"

	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"golang.org/x/net/html"
)

// StageID is the id attribute of the stage node.
const StageID = "ds-ghost-stage"

// Stage is the layer holding every overlay of one run.
type Stage struct {
	doc      *dom.Document
	node     *html.Node
	overlays []*Overlay
	height   float64
}

// Overlay is one rendered box. It keeps a weak reference to its target: the
// target's lifecycle belongs to the host document.
type Overlay struct {
	Request annotation.Request
	Rect    annotation.Rect
	Box     *html.Node
}

// NewStage creates the stage and appends it to body. height is the document
// scroll height; the stage grows to cover every box rendered into it.
func NewStage(doc *dom.Document, height float64) *Stage {
	n := dom.Element("div", "id", StageID)
	s := &Stage{doc: doc, node: n, height: height}
	dom.SetAttr(n, "style", dom.Style{
		{"position", "absolute"},
		{"top", "0"},
		{"left", "0"},
		{"width", "100%"},
		{"height", px(height)},
		{"pointer-events", "none"},
		{"z-index", "999999"},
	}.String())
	doc.Append(n)
	return s
}

// Node returns the stage element.
func (s *Stage) Node() *html.Node { return s.node }

// Overlays returns the overlays in render order.
func (s *Stage) Overlays() []*Overlay { return s.overlays }

// Governed returns the overlays tagged with category c, found by attribute
// as a browser query would.
func (s *Stage) Governed(c annotation.Category) []*html.Node {
	attr := c.Attr()
	var out []*html.Node
	for child := s.node.FirstChild; child != nil; child = child.NextSibling {
		if _, ok := dom.Attr(child, attr); ok {
			out = append(out, child)
		}
	}
	return out
}

// SetDisplay shows or hides every overlay of category c.
func (s *Stage) SetDisplay(c annotation.Category, visible bool) int {
	display := "none"
	if visible {
		display = "block"
	}
	boxes := s.Governed(c)
	for _, b := range boxes {
		dom.SetStyle(b, "display", display)
	}
	return len(boxes)
}

// attached reports whether the stage is still in the document.
func (s *Stage) attached() bool { return s.doc.Contains(s.node) }

// Remove detaches the stage from the document.
func (s *Stage) Remove() { dom.Detach(s.node) }

func (s *Stage) add(o *Overlay) {
	s.node.AppendChild(o.Box)
	s.overlays = append(s.overlays, o)
	if b := o.Rect.Bottom(); b > s.height {
		s.height = b
		dom.SetStyle(s.node, "height", px(b))
	}
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
