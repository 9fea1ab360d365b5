package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Style is an ordered list of CSS declarations.
type Style [][2]string

// Set replaces prop or appends it.
func (s Style) Set(prop, val string) Style {
	for i := range s {
		if s[i][0] == prop {
			s[i][1] = val
			return s
		}
	}
	return append(s, [2]string{prop, val})
}

// Get returns the value of prop.
func (s Style) Get(prop string) (string, bool) {
	for _, d := range s {
		if d[0] == prop {
			return d[1], true
		}
	}
	return "", false
}

func (s Style) String() string {
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, d[0]+": "+d[1])
	}
	return strings.Join(parts, "; ")
}

// ParseStyle parses an inline style attribute value.
func ParseStyle(v string) Style {
	var s Style
	for _, decl := range strings.Split(v, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		s = s.Set(prop, strings.TrimSpace(val))
	}
	return s
}

// StyleOf parses the style attribute of n.
func StyleOf(n *html.Node) Style {
	v, _ := Attr(n, "style")
	return ParseStyle(v)
}

// SetStyle updates one declaration of the style attribute of n.
func SetStyle(n *html.Node, prop, val string) {
	SetAttr(n, "style", StyleOf(n).Set(prop, val).String())
}
