package legend

import (
	"github.com/hazyhaar/ghostmap/ghost/annotation"
	"github.com/hazyhaar/ghostmap/ghost/internal/dom"
	"golang.org/x/net/html"
)

// Element ids of the legend and its buttons.
const (
	ID             = "ds-ghost-legend"
	ToggleAllID    = "toggle-all-btn"
	RemoveID       = "remove-overlays-btn"
	checkboxPrefix = "toggle-"
)

// CheckboxID returns the element id of the checkbox for cat.
func CheckboxID(cat annotation.Category) string { return checkboxPrefix + cat.ID() }

func (c *Controller) build() *html.Node {
	root := dom.Element("div", "id", ID)
	dom.SetAttr(root, "style", dom.Style{
		{"position", "fixed"},
		{"top", "10px"},
		{"right", "10px"},
		{"background", "rgba(0,0,0,0.92)"},
		{"color", "#fff"},
		{"padding", "12px"},
		{"font-size", "12px"},
		{"z-index", "1000000"},
		{"border-radius", "6px"},
		{"max-width", "240px"},
		{"box-shadow", "0 4px 12px rgba(0,0,0,0.5)"},
	}.String())

	title := dom.Element("div", "style", "font-weight: bold; margin-bottom: 10px; font-size: 13px")
	dom.AppendText(title, "Component Overview")
	root.AppendChild(title)

	for _, cat := range annotation.Categories {
		row := dom.Element("label", "style", "display: flex; align-items: center; margin: 8px 0; cursor: pointer")
		box := dom.Element("input",
			"type", "checkbox",
			"id", CheckboxID(cat),
			"data-overlay-type", cat.Attr(),
			"checked", "",
			"style", "margin-right: 8px; cursor: pointer; width: 14px; height: 14px",
		)
		swatch := dom.Element("span", "style", "color: "+cat.Color()+"; margin-right: 8px; font-size: 16px")
		dom.AppendText(swatch, "■")
		caption := dom.Element("span", "style", "font-size: 11px")
		dom.AppendText(caption, cat.Label())

		row.AppendChild(box)
		row.AppendChild(swatch)
		row.AppendChild(caption)
		root.AppendChild(row)
		c.boxes[cat] = box
	}

	actions := dom.Element("div", "style", "margin-top: 12px; padding-top: 12px; border-top: 1px solid #666")
	toggle := dom.Element("button", "id", ToggleAllID,
		"style", "width: 100%; padding: 6px; cursor: pointer; margin-bottom: 6px; border-radius: 3px; border: none; background: #444; color: #fff")
	dom.AppendText(toggle, "Toggle All")
	remove := dom.Element("button", "id", RemoveID,
		"style", "width: 100%; padding: 6px; cursor: pointer; border-radius: 3px; border: none; background: #d32f2f; color: #fff")
	dom.AppendText(remove, "Remove Overlays")
	actions.AppendChild(toggle)
	actions.AppendChild(remove)
	root.AppendChild(actions)

	return root
}
