// Package legend builds the control panel that toggles annotation categories
// and owns the category visibility state machine.
//
// Every visibility change goes through Controller.SetChecked, whether it comes
// from a single checkbox or from the toggle-all button, so checkbox state and
// overlay display never diverge. A Controller is safe for concurrent use:
// transitions are serialised, and toggle-all runs as one unit.
package legend

import (
	"errors"
	"sync"

	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"github.com/hazyhaar/ghostmap/ghost/internal/render"
	"golang.org/x/net/html"
)

// ErrRemoved is returned by every operation after Remove.
var ErrRemoved = errors.New("legend: overlays removed")

// EventKind distinguishes visibility transitions from removal.
type EventKind int

const (
	EventVisibility EventKind = iota
	EventRemoved
)

// Event describes one transition, for observers mirroring the state
// elsewhere (a live browser page).
type Event struct {
	Kind     EventKind
	Category annotation.Category
	Visible  bool
	Governed int // overlays whose display changed
}

// Controller is the legend of one run.
type Controller struct {
	stage *render.Stage
	node  *html.Node
	boxes map[annotation.Category]*html.Node

	mu        sync.Mutex
	visible   map[annotation.Category]bool
	removed   bool
	observers []func(Event)
}

// Build creates the legend for stage and appends it to body. Every category
// starts visible.
func Build(doc *dom.Document, stage *render.Stage) *Controller {
	c := &Controller{
		stage:   stage,
		boxes:   make(map[annotation.Category]*html.Node, len(annotation.Categories)),
		visible: make(map[annotation.Category]bool, len(annotation.Categories)),
	}
	c.node = c.build()
	for _, cat := range annotation.Categories {
		c.visible[cat] = true
	}
	doc.Append(c.node)
	return c
}

// Node returns the legend element.
func (c *Controller) Node() *html.Node { return c.node }

// Stage returns the stage governed by this legend.
func (c *Controller) Stage() *render.Stage { return c.stage }

// OnEvent registers an observer called after each transition. Observers run
// with the controller locked and must not call back into it.
func (c *Controller) OnEvent(fn func(Event)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Visible reports the visibility of cat.
func (c *Controller) Visible(cat annotation.Category) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible[cat]
}

// Checked reports the checkbox state of cat.
func (c *Controller) Checked(cat annotation.Category) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked(cat)
}

func (c *Controller) checked(cat annotation.Category) bool {
	box, ok := c.boxes[cat]
	if !ok {
		return false
	}
	_, checked := dom.Attr(box, "checked")
	return checked
}

// Removed reports whether the terminal transition happened.
func (c *Controller) Removed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removed
}

// SetChecked is the single visibility transition: it sets the checkbox of cat,
// the visibility table entry, and the display of every governed overlay.
func (c *Controller) SetChecked(cat annotation.Category, checked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setChecked(cat, checked)
}

func (c *Controller) setChecked(cat annotation.Category, checked bool) error {
	if c.removed {
		return ErrRemoved
	}
	box, ok := c.boxes[cat]
	if !ok {
		return nil
	}
	if checked {
		dom.SetAttr(box, "checked", "")
	} else {
		dom.RemoveAttr(box, "checked")
	}
	c.visible[cat] = checked
	n := c.stage.SetDisplay(cat, checked)
	c.notify(Event{Kind: EventVisibility, Category: cat, Visible: checked, Governed: n})
	return nil
}

// Toggle flips the checkbox of cat.
func (c *Controller) Toggle(cat annotation.Category) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setChecked(cat, !c.checked(cat))
}

// ToggleAll sets every checkbox to the negation of "all checked", dispatching
// one transition per category in legend order before returning.
func (c *Controller) ToggleAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed {
		return ErrRemoved
	}
	all := true
	for _, cat := range annotation.Categories {
		if !c.checked(cat) {
			all = false
			break
		}
	}
	for _, cat := range annotation.Categories {
		if err := c.setChecked(cat, !all); err != nil {
			return err
		}
	}
	return nil
}

// Remove destroys the stage and the legend. It is terminal: a new run is
// required to annotate again.
func (c *Controller) Remove() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.removed {
		return ErrRemoved
	}
	c.stage.Remove()
	dom.Detach(c.node)
	c.removed = true
	c.notify(Event{Kind: EventRemoved})
	return nil
}

func (c *Controller) notify(ev Event) {
	for _, fn := range c.observers {
		fn(ev)
	}
}

// Teardown removes any stage or legend left in doc by a previous run and
// returns how many nodes were removed.
func Teardown(doc *dom.Document) int {
	removed := 0
	for _, id := range []string{render.StageID, ID} {
		for n := doc.ByID(id); n != nil; n = doc.ByID(id) {
			dom.Detach(n)
			removed++
		}
	}
	return removed
}
