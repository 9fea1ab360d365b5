package render

import (
	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"github.com/hazyhaar/ghostmap/ghost/internal/geometry"
)

// Renderer turns annotation requests into positioned boxes.
type Renderer struct {
	geom geometry.Source
}

// NewRenderer creates a Renderer reading rectangles from geom.
func NewRenderer(geom geometry.Source) *Renderer {
	return &Renderer{geom: geom}
}

// Render inserts one box for req into stage. It skips elements whose width
// and height are both zero.
func (r *Renderer) Render(stage *Stage, req annotation.Request) (*Overlay, bool) {
	rect := r.geom.RectOf(req.Target)
	if rect.Width == 0 && rect.Height == 0 {
		return nil, false
	}

	box := dom.Element("div", req.Category.Attr(), "true")
	dom.SetAttr(box, "style", dom.Style{
		{"position", "absolute"},
		{"top", px(rect.Top)},
		{"left", px(rect.Left)},
		{"width", px(rect.Width)},
		{"height", px(rect.Height)},
		{"border", "3px " + req.Border.String() + " " + req.Color},
		{"background-color", req.Color + "18"},
		{"box-sizing", "border-box"},
		{"z-index", "100"},
	}.String())

	label := dom.Element("div")
	dom.SetAttr(label, "style", dom.Style{
		{"position", "absolute"},
		{"top", "-22px"},
		{"left", "0"},
		{"background", req.Color},
		{"color", "#fff"},
		{"font-size", "12px"},
		{"font-weight", "bold"},
		{"padding", "4px 8px"},
		{"white-space", "nowrap"},
		{"border-radius", "3px"},
	}.String())
	dom.AppendText(label, req.Label)
	box.AppendChild(label)

	o := &Overlay{Request: req, Rect: rect, Box: box}
	stage.add(o)
	return o, true
}
