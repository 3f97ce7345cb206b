// Package svg parses part graphics and resolves inherited presentation
// attributes the way the part editor renders them.
package svg

import (
	"fmt"
	"os"

	"github.com/beevik/etree"
)

// Graphic is a parsed graphic document.
type Graphic struct {
	Path string
	Doc  *etree.Document
}

// Open reads and parses the graphic at path. A missing file yields an error
// matching fs.ErrNotExist.
func Open(path string) (*Graphic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := Parse(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Parse parses a graphic from memory. path is recorded for fixers and may
// be empty.
func Parse(path string, data []byte) (*Graphic, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing graphic: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parsing graphic: no root element")
	}
	return &Graphic{Path: path, Doc: doc}, nil
}

// Release drops the parsed tree.
func (g *Graphic) Release() {
	g.Doc = nil
}

// Root returns the root element.
func (g *Graphic) Root() *etree.Element {
	if g.Doc == nil {
		return nil
	}
	return g.Doc.Root()
}

// Elements returns every element in document order, root first.
func (g *Graphic) Elements() []*etree.Element {
	var out []*etree.Element
	Walk(g.Root(), func(el *etree.Element) {
		out = append(out, el)
	})
	return out
}

// ElementByID returns the first element with the given id.
func (g *Graphic) ElementByID(id string) *etree.Element {
	if found := ElementsByID(g.Root(), id); len(found) > 0 {
		return found[0]
	}
	return nil
}

// ElementsByID returns el and its descendants whose id equals id.
func ElementsByID(el *etree.Element, id string) []*etree.Element {
	var out []*etree.Element
	Walk(el, func(e *etree.Element) {
		if a := e.SelectAttr("id"); a != nil && a.Value == id {
			out = append(out, e)
		}
	})
	return out
}

// Walk calls fn for el and every descendant element in document order.
func Walk(el *etree.Element, fn func(*etree.Element)) {
	if el == nil {
		return
	}
	fn(el)
	for _, c := range el.ChildElements() {
		Walk(c, fn)
	}
}

// IsText reports whether el is a text-bearing element.
func IsText(el *etree.Element) bool {
	return el.Tag == "text" || el.Tag == "tspan"
}
