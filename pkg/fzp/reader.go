package fzp

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Open reads and parses a part document from disk.
func Open(path string) (*Part, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parsing %s: no root element", path)
	}
	return &Part{Doc: doc}, nil
}

// Parse parses a part document from memory.
func Parse(data []byte) (*Part, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing part: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parsing part: no root element")
	}
	return &Part{Doc: doc}, nil
}

// Release drops the parsed tree so it can be collected before the next
// target is processed.
func (p *Part) Release() {
	p.Doc = nil
}

// Root returns the module element.
func (p *Part) Root() *etree.Element {
	if p.Doc == nil {
		return nil
	}
	return p.Doc.Root()
}

// ModuleID returns the moduleId attribute of the root element.
func (p *Part) ModuleID() string {
	return Attr(p.Root(), "moduleId")
}

// FritzingVersion returns the fritzingVersion attribute of the root element.
func (p *Part) FritzingVersion() string {
	return Attr(p.Root(), "fritzingVersion")
}

// FindAll returns every element in the document with the given local name,
// including the root, in document order.
func (p *Part) FindAll(tag string) []*etree.Element {
	return Descendants(p.Root(), tag, true)
}

// Has reports whether any element with the given local name exists.
func (p *Part) Has(tag string) bool {
	return len(p.FindAll(tag)) > 0
}

// Views returns the entries of the top-level views section, or nil when the
// section is missing.
func (p *Part) Views() []View {
	root := p.Root()
	if root == nil {
		return nil
	}
	section := root.SelectElement("views")
	if section == nil {
		return nil
	}
	var views []View
	for _, el := range section.ChildElements() {
		v := View{Name: el.Tag, Elem: el}
		if layers := el.SelectElement("layers"); layers != nil {
			v.Layers = true
			v.Image = Attr(layers, "image")
			for _, l := range layers.SelectElements("layer") {
				if id := Attr(l, "layerId"); id != "" {
					v.LayerIDs = append(v.LayerIDs, id)
				}
			}
		}
		views = append(views, v)
	}
	return views
}

// View returns the named top-level view.
func (p *Part) View(name string) (View, bool) {
	for _, v := range p.Views() {
		if v.Name == name {
			return v, true
		}
	}
	return View{}, false
}

// Connectors returns the connector entries of the module's connectors section.
func (p *Part) Connectors() []Connector {
	root := p.Root()
	if root == nil {
		return nil
	}
	section := root.SelectElement("connectors")
	if section == nil {
		return nil
	}
	var out []Connector
	for _, el := range section.SelectElements("connector") {
		c := Connector{ID: Attr(el, "id"), Elem: el}
		if views := el.SelectElement("views"); views != nil {
			for _, v := range views.ChildElements() {
				cv := ConnectorView{View: v.Tag, Elem: v}
				for _, pe := range v.SelectElements("p") {
					cv.Entries = append(cv.Entries, newEntry(pe))
				}
				c.Views = append(c.Views, cv)
			}
		}
		out = append(out, c)
	}
	return out
}

func newEntry(el *etree.Element) Entry {
	e := Entry{
		Elem:       el,
		Layer:      Attr(el, "layer"),
		SvgID:      Attr(el, "svgId"),
		TerminalID: Attr(el, "terminalId"),
		Hybrid:     Attr(el, "hybrid") == "yes",
	}
	if a := el.SelectAttr("legId"); a != nil {
		e.HasLegID = true
		e.LegID = a.Value
	}
	return e
}

// Connector returns the connector with the given id.
func (p *Part) Connector(id string) (Connector, bool) {
	for _, c := range p.Connectors() {
		if c.ID == id {
			return c, true
		}
	}
	return Connector{}, false
}

// Buses returns every bus element in the document.
func (p *Part) Buses() []Bus {
	var out []Bus
	for _, el := range p.FindAll("bus") {
		b := Bus{ID: Attr(el, "id"), Elem: el}
		for _, n := range Descendants(el, "nodeMember", false) {
			b.Nodes = append(b.Nodes, NodeMember{ConnectorID: Attr(n, "connectorId")})
		}
		out = append(out, b)
	}
	return out
}

// Properties returns every property element in the document.
func (p *Part) Properties() []Property {
	var out []Property
	for _, el := range p.FindAll("property") {
		out = append(out, Property{
			Name:  Attr(el, "name"),
			Value: strings.TrimSpace(el.Text()),
			Elem:  el,
		})
	}
	return out
}

// Attr returns the value of an unprefixed attribute, or "" when el is nil
// or the attribute is absent.
func Attr(el *etree.Element, key string) string {
	if el == nil {
		return ""
	}
	return el.SelectAttrValue(key, "")
}

// Descendants returns the elements below el with the given local name in
// document order. When self is true el itself is included if it matches.
func Descendants(el *etree.Element, tag string, self bool) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	if self && el.Tag == tag {
		out = append(out, el)
	}
	for _, c := range el.ChildElements() {
		out = append(out, Descendants(c, tag, true)...)
	}
	return out
}
