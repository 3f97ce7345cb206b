package svg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

var (
	// ErrStyleConflict is returned when an element declares the same property
	// both as a presentation attribute and in its inline style.
	ErrStyleConflict = errors.New("style conflict")

	// ErrUnknownStyle is returned when the nearest inline style of a connector
	// graphic holds a declaration outside the allowed set.
	ErrUnknownStyle = errors.New("unknown style attribute")

	// ErrMalformedStyle is returned for a style declaration without a colon.
	ErrMalformedStyle = errors.New("malformed style declaration")
)

// paintStyles are the inline style keys tolerated on a connector graphic.
var paintStyles = map[string]bool{
	"fill":             true,
	"stroke":           true,
	"stroke-width":     true,
	"fill-opacity":     true,
	"stroke-opacity":   true,
	"font-size":        true,
	"stroke-dasharray": true,
}

// ResolveInherited returns the nearest value of prop declared on el or one
// of its ancestors, reading both presentation attributes and inline styles.
// An element declaring prop in both places fails with ErrStyleConflict.
func ResolveInherited(el *etree.Element, prop string) (string, bool, error) {
	return resolve(el, prop)
}

func resolve(el *etree.Element, prop string) (string, bool, error) {
	for e := el; e != nil; e = e.Parent() {
		decls, err := ParseStyle(e.SelectAttrValue("style", ""))
		if err != nil {
			return "", false, fmt.Errorf("element %s: %w", describe(e), err)
		}

		attr := e.SelectAttrValue(prop, "")
		styled, inStyle := lookup(decls, prop)
		if attr != "" && inStyle {
			return "", false, fmt.Errorf("%w: %s already defined as attribute on %s, do not override with style",
				ErrStyleConflict, prop, describe(e))
		}
		if attr != "" {
			return attr, true, nil
		}
		if inStyle {
			return styled, true, nil
		}
	}
	return "", false, nil
}

// Declaration is one key:value pair of an inline style.
type Declaration struct {
	Key   string
	Value string
}

// ParseStyle splits an inline style string into declarations.
func ParseStyle(style string) ([]Declaration, error) {
	var out []Declaration
	for _, part := range strings.Split(style, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedStyle, strings.TrimSpace(part))
		}
		out = append(out, Declaration{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}
	return out, nil
}

// checkPaintStyle validates the nearest non-empty inline style of el or its
// ancestors against paintStyles. Styles further up the chain are not checked.
func checkPaintStyle(el *etree.Element) error {
	for e := el; e != nil; e = e.Parent() {
		style := e.SelectAttrValue("style", "")
		if strings.TrimSpace(style) == "" {
			continue
		}
		decls, err := ParseStyle(style)
		if err != nil {
			return fmt.Errorf("element %s: %w", describe(e), err)
		}
		for _, d := range decls {
			if !paintStyles[d.Key] {
				return fmt.Errorf("%w: %s", ErrUnknownStyle, d.Key)
			}
		}
		return nil
	}
	return nil
}

func lookup(decls []Declaration, key string) (string, bool) {
	for _, d := range decls {
		if d.Key == key {
			return d.Value, true
		}
	}
	return "", false
}

// Visible reports whether a connector graphic can be painted: it needs a
// fill, or a stroke with a non-zero width. Groups are visible when any child
// is visible.
func Visible(el *etree.Element) (bool, error) {
	if el.Tag == "g" {
		for _, c := range el.ChildElements() {
			ok, err := Visible(c)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}

	if err := checkPaintStyle(el); err != nil {
		return false, err
	}
	fill, _, err := resolve(el, "fill")
	if err != nil {
		return false, err
	}
	stroke, _, err := resolve(el, "stroke")
	if err != nil {
		return false, err
	}
	width, _, err := resolve(el, "stroke-width")
	if err != nil {
		return false, err
	}

	if painted(fill) {
		return true, nil
	}
	return painted(stroke) && width != "" && width != "0", nil
}

// ValidStroke reports whether a non-zero stroke width comes with a stroke
// paint.
func ValidStroke(el *etree.Element) (bool, error) {
	if err := checkPaintStyle(el); err != nil {
		return false, err
	}
	width, _, err := resolve(el, "stroke-width")
	if err != nil {
		return false, err
	}
	stroke, _, err := resolve(el, "stroke")
	if err != nil {
		return false, err
	}
	if width != "" && width != "0" {
		return painted(stroke), nil
	}
	return true, nil
}

func painted(v string) bool {
	return v != "" && v != "none"
}

func describe(el *etree.Element) string {
	if id := el.SelectAttrValue("id", ""); id != "" {
		return fmt.Sprintf("<%s id=%q>", el.Tag, id)
	}
	return "<" + el.Tag + ">"
}
