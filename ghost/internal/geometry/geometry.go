// Package geometry supplies element rectangles in scroll-adjusted document
// coordinates. Rectangles are read once, at classification time; later reflow
// does not update existing overlays.
package geometry

import (
	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"golang.org/x/net/html"
)

// Rect is re-exported for callers that only deal with geometry.
type Rect = annotation.Rect

// Source reads the on-screen rectangle of an element. It has no side effects.
type Source interface {
	RectOf(n *html.Node) Rect
}

// Extent is implemented by sources that know the document scroll height.
type Extent interface {
	ScrollHeight() float64
}

// Func adapts a function to Source.
type Func func(n *html.Node) Rect

func (f Func) RectOf(n *html.Node) Rect { return f(n) }

// Uniform returns the same rectangle for every element.
func Uniform(r Rect) Source {
	return Func(func(*html.Node) Rect { return r })
}

// Cache memoises an underlying source so each element is measured at most
// once per run.
type Cache struct {
	src   Source
	rects map[*html.Node]Rect
}

// NewCache wraps src.
func NewCache(src Source) *Cache {
	return &Cache{src: src, rects: make(map[*html.Node]Rect)}
}

func (c *Cache) RectOf(n *html.Node) Rect {
	if r, ok := c.rects[n]; ok {
		return r
	}
	r := c.src.RectOf(n)
	c.rects[n] = r
	return r
}

// ScrollHeight forwards to the wrapped source when it implements Extent.
func (c *Cache) ScrollHeight() float64 {
	if e, ok := c.src.(Extent); ok {
		return e.ScrollHeight()
	}
	return 0
}

// Measured returns the number of distinct elements read so far.
func (c *Cache) Measured() int { return len(c.rects) }
