// Package annotation defines the types produced by ghostmap classification.
// They are the public contract between the classifier, the renderer and any
// consumer of run reports.
package annotation

import "golang.org/x/net/html"

// Category groups annotations for coloring and legend toggling.
type Category int

const (
	Layout Category = iota
	Article
	Card
	Widget
	Ad
)

// Categories lists every category in legend order.
var Categories = []Category{Layout, Article, Card, Widget, Ad}

var categoryMeta = [...]struct {
	id, attr, label, color string
}{
	Layout:  {"layout", "data-overlay-layout", "Layout Sections", "#ff0055"},
	Article: {"articles", "data-overlay-article", "Article Containers", "#0066cc"},
	Card:    {"cards", "data-overlay-cards", "Card Examples", "#33ccff"},
	Widget:  {"widgets", "data-overlay-widgets", "RHS Widgets", "#00cc66"},
	Ad:      {"ads", "data-overlay-ads", "Ad Slots", "#bc13fe"},
}

func (c Category) valid() bool { return c >= Layout && c <= Ad }

// ID is the short identifier used in legend element ids (toggle-<id>).
func (c Category) ID() string {
	if !c.valid() {
		return ""
	}
	return categoryMeta[c].id
}

// Attr is the attribute key carried by every rendered overlay of c.
func (c Category) Attr() string {
	if !c.valid() {
		return ""
	}
	return categoryMeta[c].attr
}

// Label is the legend caption.
func (c Category) Label() string {
	if !c.valid() {
		return ""
	}
	return categoryMeta[c].label
}

// Color is the legend swatch color.
func (c Category) Color() string {
	if !c.valid() {
		return ""
	}
	return categoryMeta[c].color
}

func (c Category) String() string {
	if id := c.ID(); id != "" {
		return id
	}
	return "unknown"
}

// ParseCategory maps a legend id or attribute key back to its Category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if s == c.ID() || s == c.Attr() {
			return c, true
		}
	}
	return 0, false
}

// BorderStyle is the CSS border style of an overlay box.
type BorderStyle int

const (
	Solid BorderStyle = iota
	Dashed
)

func (b BorderStyle) String() string {
	if b == Dashed {
		return "dashed"
	}
	return "solid"
}

// Rect is an element rectangle in scroll-adjusted document coordinates.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Visible reports whether the rectangle has any extent. A rectangle with one
// zero dimension (a collapsed full-width banner) is still visible.
func (r Rect) Visible() bool { return r.Width > 0 || r.Height > 0 }

// Bottom is Top+Height.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Request asks the renderer to draw one overlay. Target is never mutated.
type Request struct {
	Target   *html.Node
	Label    string
	Color    string
	Border   BorderStyle
	Category Category
}
