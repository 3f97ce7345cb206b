package fzp

import "github.com/beevik/etree"

// View names used in part documents.
const (
	BreadboardView = "breadboardView"
	SchematicView  = "schematicView"
	PCBView        = "pcbView"
	IconView       = "iconView"

	// DefaultUnits appears among the views but carries no graphic.
	DefaultUnits = "defaultUnits"
)

// Part is a parsed part metadata document (.fzp).
type Part struct {
	Doc *etree.Document
}

// View is one entry of the top-level views section.
type View struct {
	Name string
	Elem *etree.Element

	// Layers is false when the view has no layers element.
	Layers   bool
	Image    string
	LayerIDs []string
}

// Connector is a connector entry with its per-view references.
type Connector struct {
	ID    string
	Elem  *etree.Element
	Views []ConnectorView
}

// ConnectorView holds the p entries of one view of a connector.
type ConnectorView struct {
	View    string
	Elem    *etree.Element
	Entries []Entry
}

// Entry is a single p reference of a connector view.
type Entry struct {
	Elem       *etree.Element
	Layer      string
	SvgID      string
	TerminalID string
	LegID      string
	HasLegID   bool
	Hybrid     bool
}

// Exempt reports whether the entry is a hybrid connector or sits on the
// unknown layer, which makes its visibility undecidable.
func (e Entry) Exempt() bool {
	return e.Hybrid || e.Layer == "unknown"
}

// Bus is a named group of connectors.
type Bus struct {
	ID    string
	Elem  *etree.Element
	Nodes []NodeMember
}

// NodeMember is a member of a bus.
type NodeMember struct {
	ConnectorID string
}

// Property is a name/value pair from the properties section.
type Property struct {
	Name  string
	Value string
	Elem  *etree.Element
}
