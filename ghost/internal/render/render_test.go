package render

import (
	"strings"
	"testing"

	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"github.com/hazyhaar/ghostmap/ghost/internal/geometry"
	"golang.org/x/net/html"
)

func newDoc(t *testing.T) (*dom.Document, *html.Node, *html.Node) {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(`<html><body><div id="a">a</div><div id="b">b</div></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	return doc, doc.ByID("a"), doc.ByID("b")
}

func TestRenderSkipsZeroArea(t *testing.T) {
	doc, a, b := newDoc(t)
	geom := geometry.Func(func(n *html.Node) annotation.Rect {
		if n == a {
			return annotation.Rect{Top: 10, Left: 10}
		}
		return annotation.Rect{Top: 100, Width: 800}
	})
	stage := NewStage(doc, 0)
	r := NewRenderer(geom)

	if _, ok := r.Render(stage, annotation.Request{Target: a, Label: "A", Color: "#000"}); ok {
		t.Error("zero-area element should be skipped")
	}
	o, ok := r.Render(stage, annotation.Request{Target: b, Label: "Banner", Color: "#ff0055", Category: annotation.Layout})
	if !ok {
		t.Fatal("zero-height full-width element should render")
	}
	if got := len(stage.Overlays()); got != 1 {
		t.Fatalf("overlays: got %d, want 1", got)
	}
	if v, ok := dom.Attr(o.Box, "data-overlay-layout"); !ok || v != "true" {
		t.Errorf("category attribute: got %q,%v", v, ok)
	}
	if got := o.Box.FirstChild.FirstChild.Data; got != "Banner" {
		t.Errorf("label: got %q", got)
	}
}

func mustRender(t *testing.T, n *html.Node) string {
	t.Helper()
	out, err := dom.RenderNode(n)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestRenderDoesNotMutateTarget(t *testing.T) {
	doc, a, _ := newDoc(t)
	before := mustRender(t, a)
	stage := NewStage(doc, 0)
	NewRenderer(geometry.Uniform(annotation.Rect{Width: 5, Height: 5})).
		Render(stage, annotation.Request{Target: a, Label: "A", Color: "#000"})
	if after := mustRender(t, a); after != before {
		t.Errorf("target mutated: %q -> %q", before, after)
	}
}

func TestRenderBoxStyle(t *testing.T) {
	doc, a, _ := newDoc(t)
	stage := NewStage(doc, 400)
	o, _ := NewRenderer(geometry.Uniform(annotation.Rect{Top: 12.5, Left: 3, Width: 100, Height: 40})).
		Render(stage, annotation.Request{Target: a, Label: "Card", Color: "#33ccff", Border: annotation.Dashed, Category: annotation.Card})

	st := dom.StyleOf(o.Box)
	checks := map[string]string{
		"top":              "12.5px",
		"left":             "3px",
		"width":            "100px",
		"height":           "40px",
		"border":           "3px dashed #33ccff",
		"background-color": "#33ccff18",
	}
	for prop, want := range checks {
		if got, _ := st.Get(prop); got != want {
			t.Errorf("%s: got %q, want %q", prop, got, want)
		}
	}
	if h, _ := dom.StyleOf(stage.Node()).Get("height"); h != "400px" {
		t.Errorf("stage height: got %q, want 400px", h)
	}
}

func TestStageGrowsToCoverBoxes(t *testing.T) {
	doc, a, _ := newDoc(t)
	stage := NewStage(doc, 100)
	NewRenderer(geometry.Uniform(annotation.Rect{Top: 900, Width: 10, Height: 100})).
		Render(stage, annotation.Request{Target: a, Label: "Footer"})
	if h, _ := dom.StyleOf(stage.Node()).Get("height"); h != "1000px" {
		t.Errorf("stage height: got %q, want 1000px", h)
	}
}

func TestStageDisplayAndRemove(t *testing.T) {
	doc, a, b := newDoc(t)
	stage := NewStage(doc, 0)
	r := NewRenderer(geometry.Uniform(annotation.Rect{Width: 5, Height: 5}))
	r.Render(stage, annotation.Request{Target: a, Category: annotation.Ad})
	r.Render(stage, annotation.Request{Target: b, Category: annotation.Layout})

	if n := stage.SetDisplay(annotation.Ad, false); n != 1 {
		t.Errorf("SetDisplay governed: got %d, want 1", n)
	}
	if d, _ := dom.StyleOf(stage.Governed(annotation.Ad)[0]).Get("display"); d != "none" {
		t.Errorf("ad display: got %q", d)
	}
	if _, ok := dom.StyleOf(stage.Governed(annotation.Layout)[0]).Get("display"); ok {
		t.Error("layout overlay should be untouched")
	}

	if !stage.attached() {
		t.Fatal("stage should be attached")
	}
	stage.Remove()
	if stage.attached() || doc.ByID(StageID) != nil {
		t.Error("stage should be removed")
	}
}
