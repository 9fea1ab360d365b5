package legend

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"github.com/hazyhaar/ghostmap/ghost/internal/geometry"
	"github.com/hazyhaar/ghostmap/ghost/internal/render"
	"golang.org/x/net/html"
)

func setup(t *testing.T) (*dom.Document, *Controller) {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(`<html><body>
<div id="l">l</div><div id="a1">a</div><div id="a2">a</div><div id="c">c</div>
</body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	stage := render.NewStage(doc, 0)
	r := render.NewRenderer(geometry.Uniform(annotation.Rect{Width: 10, Height: 10}))
	r.Render(stage, annotation.Request{Target: doc.ByID("l"), Label: "Header", Category: annotation.Layout})
	r.Render(stage, annotation.Request{Target: doc.ByID("a1"), Label: "AD: x 1", Category: annotation.Ad})
	r.Render(stage, annotation.Request{Target: doc.ByID("a2"), Label: "AD: x 2", Category: annotation.Ad})
	r.Render(stage, annotation.Request{Target: doc.ByID("c"), Label: "Card", Category: annotation.Card})
	return doc, Build(doc, stage)
}

func displayOf(n *html.Node) string {
	d, ok := dom.StyleOf(n).Get("display")
	if !ok {
		return "block"
	}
	return d
}

func TestBuildStructure(t *testing.T) {
	doc, c := setup(t)
	if doc.ByID(ID) != c.Node() {
		t.Fatal("legend should be appended to body")
	}
	for _, cat := range annotation.Categories {
		box := doc.ByID(CheckboxID(cat))
		if box == nil {
			t.Fatalf("missing checkbox for %v", cat)
		}
		if v, _ := dom.Attr(box, "data-overlay-type"); v != cat.Attr() {
			t.Errorf("%v data-overlay-type: got %q", cat, v)
		}
		if !c.Checked(cat) || !c.Visible(cat) {
			t.Errorf("%v should start checked and visible", cat)
		}
	}
	if doc.ByID(ToggleAllID) == nil || doc.ByID(RemoveID) == nil {
		t.Error("missing legend buttons")
	}
}

func TestSetCheckedHidesGovernedOverlays(t *testing.T) {
	_, c := setup(t)
	var events []Event
	c.OnEvent(func(ev Event) { events = append(events, ev) })

	if err := c.SetChecked(annotation.Ad, false); err != nil {
		t.Fatal(err)
	}
	for _, b := range c.Stage().Governed(annotation.Ad) {
		if got := displayOf(b); got != "none" {
			t.Errorf("ad overlay display: got %q, want none", got)
		}
	}
	for _, b := range c.Stage().Governed(annotation.Layout) {
		if got := displayOf(b); got != "block" {
			t.Errorf("layout overlay display: got %q, want block", got)
		}
	}
	if c.Checked(annotation.Ad) || c.Visible(annotation.Ad) {
		t.Error("ad should be unchecked and hidden")
	}

	want := []Event{{Kind: EventVisibility, Category: annotation.Ad, Visible: false, Governed: 2}}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}

	if err := c.Toggle(annotation.Ad); err != nil {
		t.Fatal(err)
	}
	if !c.Visible(annotation.Ad) || displayOf(c.Stage().Governed(annotation.Ad)[0]) != "block" {
		t.Error("toggle should restore ad visibility")
	}
}

func TestToggleAll(t *testing.T) {
	_, c := setup(t)

	// All checked: toggle-all hides everything.
	if err := c.ToggleAll(); err != nil {
		t.Fatal(err)
	}
	for _, cat := range annotation.Categories {
		if c.Checked(cat) || c.Visible(cat) {
			t.Errorf("%v should be hidden after first toggle-all", cat)
		}
	}

	// Second toggle-all returns to the initial state.
	if err := c.ToggleAll(); err != nil {
		t.Fatal(err)
	}
	for _, cat := range annotation.Categories {
		if !c.Checked(cat) || !c.Visible(cat) {
			t.Errorf("%v should be visible after second toggle-all", cat)
		}
	}
	for _, o := range c.Stage().Overlays() {
		if got := displayOf(o.Box); got != "block" {
			t.Errorf("overlay %q display: got %q, want block", o.Request.Label, got)
		}
	}
}

func TestToggleAllMixedState(t *testing.T) {
	_, c := setup(t)
	c.SetChecked(annotation.Card, false)

	var order []annotation.Category
	c.OnEvent(func(ev Event) { order = append(order, ev.Category) })

	// Not all checked: toggle-all checks everything, in legend order.
	if err := c.ToggleAll(); err != nil {
		t.Fatal(err)
	}
	for _, cat := range annotation.Categories {
		if !c.Checked(cat) {
			t.Errorf("%v should be checked", cat)
		}
	}
	if diff := cmp.Diff(annotation.Categories, order); diff != "" {
		t.Errorf("dispatch order (-want +got):\n%s", diff)
	}
}

func TestRemoveIsTerminal(t *testing.T) {
	doc, c := setup(t)
	var removed int
	c.OnEvent(func(ev Event) {
		if ev.Kind == EventRemoved {
			removed++
		}
	})

	if err := c.Remove(); err != nil {
		t.Fatal(err)
	}
	if doc.ByID(ID) != nil || doc.ByID(render.StageID) != nil {
		t.Error("stage and legend should be gone")
	}
	if !c.Removed() || removed != 1 {
		t.Errorf("Removed: %v, events %d", c.Removed(), removed)
	}
	for name, err := range map[string]error{
		"SetChecked": c.SetChecked(annotation.Ad, false),
		"ToggleAll":  c.ToggleAll(),
		"Remove":     c.Remove(),
	} {
		if !errors.Is(err, ErrRemoved) {
			t.Errorf("%s after Remove: got %v, want ErrRemoved", name, err)
		}
	}
}

func TestTeardown(t *testing.T) {
	doc, _ := setup(t)
	if n := Teardown(doc); n != 2 {
		t.Errorf("Teardown removed %d nodes, want 2", n)
	}
	if doc.ByID(ID) != nil || doc.ByID(render.StageID) != nil {
		t.Error("teardown should remove stage and legend")
	}
	if n := Teardown(doc); n != 0 {
		t.Errorf("second Teardown removed %d nodes, want 0", n)
	}
}

func TestConcurrentTransitions(t *testing.T) {
	_, c := setup(t)
	const n = 2000

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			c.ToggleAll()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			c.Toggle(annotation.Layout)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			c.SetChecked(annotation.Ad, i%2 == 0)
			c.Checked(annotation.Card)
		}
	}()
	wg.Wait()

	for _, cat := range annotation.Categories {
		if c.Checked(cat) != c.Visible(cat) {
			t.Errorf("%v: checked %v, visible %v", cat, c.Checked(cat), c.Visible(cat))
		}
		want := "none"
		if c.Visible(cat) {
			want = "block"
		}
		for _, b := range c.Stage().Governed(cat) {
			if got := displayOf(b); got != want {
				t.Errorf("%v overlay display: got %q, want %q", cat, got, want)
			}
		}
	}
}
