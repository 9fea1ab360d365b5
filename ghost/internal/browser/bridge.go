package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"github.com/hazyhaar/ghostmap/ghost/internal/legend"
	"github.com/hazyhaar/ghostmap/ghost/internal/render"
	"github.com/ysmood/gson"
)

// BindingName is the window function the injected legend calls.
const BindingName = "__ghostmapLegend"

// injectJS removes a previous stage and legend and appends the new markup.
const injectJS = `(stageID, legendID, markup) => {
	for (const id of [stageID, legendID]) {
		let el;
		while ((el = document.getElementById(id))) el.remove();
	}
	document.body.insertAdjacentHTML("beforeend", markup);
}`

// listenJS wires the legend controls to the exposed binding. The page never
// changes overlay display itself; Go answers every action.
const listenJS = `(name, legendID, toggleID, removeID) => {
	const legend = document.getElementById(legendID);
	if (!legend) return;
	const send = (msg) => window[name](JSON.stringify(msg));
	legend.querySelectorAll("input[data-overlay-type]").forEach((cb) => {
		cb.addEventListener("change", (ev) => {
			const checked = cb.checked;
			cb.checked = !checked;
			send({action: "set", attr: cb.getAttribute("data-overlay-type"), checked: checked});
			ev.stopPropagation();
		});
	});
	document.getElementById(toggleID).addEventListener("click", () => send({action: "toggle_all"}));
	document.getElementById(removeID).addEventListener("click", () => send({action: "remove"}));
}`

const displayJS = `(stageID, attr, display, boxID, checked) => {
	const stage = document.getElementById(stageID);
	if (stage) stage.querySelectorAll("[" + attr + "]").forEach((el) => { el.style.display = display; });
	const box = document.getElementById(boxID);
	if (box) box.checked = checked;
}`

// Action is one legend interaction received from the page.
type Action struct {
	Kind     string // set | toggle_all | remove
	Category annotation.Category
	Checked  bool
}

// DecodeAction parses the payload sent by the injected legend.
func DecodeAction(raw string) (Action, error) {
	msg := gson.NewFrom(raw)
	a := Action{Kind: msg.Get("action").Str()}
	switch a.Kind {
	case "toggle_all", "remove":
		return a, nil
	case "set":
		cat, ok := annotation.ParseCategory(msg.Get("attr").Str())
		if !ok {
			return a, fmt.Errorf("browser: unknown overlay type %q", msg.Get("attr").Str())
		}
		a.Category = cat
		a.Checked = msg.Get("checked").Bool()
		return a, nil
	}
	return a, fmt.Errorf("browser: unknown legend action %q", a.Kind)
}

// Bridge mirrors a Go legend Controller into a live page. Browser events
// arrive on rod's event goroutine; the controller serialises them with any
// transition made from Go.
type Bridge struct {
	ctx    context.Context
	page   *rod.Page
	ctrl   *legend.Controller
	logger *slog.Logger

	stop func() error
	done chan struct{}
	once sync.Once
}

// Attach injects the stage and legend of ctrl into tab and starts forwarding
// legend interactions to ctrl.
func Attach(ctx context.Context, tab *Tab, ctrl *legend.Controller, logger *slog.Logger) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		ctx:    ctx,
		page:   tab.Page.Context(ctx),
		ctrl:   ctrl,
		logger: logger,
		done:   make(chan struct{}),
	}

	stageHTML, err := dom.RenderNode(ctrl.Stage().Node())
	if err != nil {
		return nil, fmt.Errorf("browser: %w", err)
	}
	legendHTML, err := dom.RenderNode(ctrl.Node())
	if err != nil {
		return nil, fmt.Errorf("browser: %w", err)
	}
	markup := stageHTML + legendHTML
	if _, err := b.page.Eval(injectJS, render.StageID, legend.ID, markup); err != nil {
		return nil, fmt.Errorf("browser: inject overlays: %w", err)
	}

	stop, err := b.page.Expose(BindingName, b.handle)
	if err != nil {
		return nil, fmt.Errorf("browser: expose legend binding: %w", err)
	}
	b.stop = stop

	if _, err := b.page.Eval(listenJS, BindingName, legend.ID, legend.ToggleAllID, legend.RemoveID); err != nil {
		_ = stop()
		return nil, fmt.Errorf("browser: wire legend: %w", err)
	}

	ctrl.OnEvent(b.mirror)
	return b, nil
}

// Done is closed once the overlays have been removed from the page.
func (b *Bridge) Done() <-chan struct{} { return b.done }

// Apply runs a single action against the controller.
func (b *Bridge) Apply(a Action) error {
	switch a.Kind {
	case "set":
		return b.ctrl.SetChecked(a.Category, a.Checked)
	case "toggle_all":
		return b.ctrl.ToggleAll()
	case "remove":
		return b.ctrl.Remove()
	}
	return fmt.Errorf("browser: unknown legend action %q", a.Kind)
}

// Close stops forwarding events. The overlays stay in the page.
func (b *Bridge) Close() error {
	if b.stop == nil {
		return nil
	}
	err := b.stop()
	b.stop = nil
	return err
}

func (b *Bridge) handle(arg gson.JSON) (interface{}, error) {
	a, err := DecodeAction(arg.Str())
	if err != nil {
		b.logger.Warn("browser: legend event", "error", err)
		return nil, err
	}
	b.logger.Debug("browser: legend event", "action", a.Kind, "category", a.Category.String())
	if err := b.Apply(a); err != nil {
		b.logger.Debug("browser: legend action rejected", "action", a.Kind, "error", err)
		return nil, err
	}
	return nil, nil
}

func (b *Bridge) mirror(ev legend.Event) {
	switch ev.Kind {
	case legend.EventVisibility:
		display := "none"
		if ev.Visible {
			display = "block"
		}
		_, err := b.page.Eval(displayJS, render.StageID, ev.Category.Attr(), display,
			legend.CheckboxID(ev.Category), ev.Visible)
		if err != nil {
			b.logger.Warn("browser: mirror visibility", "category", ev.Category.String(), "error", err)
		}
	case legend.EventRemoved:
		if _, err := b.page.Eval(injectJS, render.StageID, legend.ID, ""); err != nil {
			b.logger.Warn("browser: remove overlays", "error", err)
		}
		b.once.Do(func() { close(b.done) })
	}
}
