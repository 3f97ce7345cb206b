package checks

import (
	"github.com/punnlert/modular-tutorial-fritzing/pkg/doctor"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/fzp"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/report"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/svg"
)

var (
	connectorLayersEntry = partEntry("connector_layers",
		"Check connector layers are properly defined", checkConnectorLayers)

	connectorTerminalEntry = MetadataEntry{
		Descriptor: Descriptor{
			Name:        "connector_terminal",
			Description: "Check if the connector terminals defined in the FZP file exist in the referenced SVGs",
			NeedsPath:   true,
			CanFix:      true,
		},
		New: func(p *fzp.Part, src *Source) Checker {
			return &connectorTerminal{part: p, src: src}
		},
	}

	connectorVisibilityEntry = MetadataEntry{
		Descriptor: Descriptor{
			Name:        "connector_visibility",
			Description: "Check for invisible (non-hybrid) connectors in the SVG files referenced by the FZP",
			NeedsPath:   true,
		},
		New: func(p *fzp.Part, src *Source) Checker {
			return &connectorVisibility{part: p, src: src}
		},
	}

	pcbConnectorStrokeEntry = MetadataEntry{
		Descriptor: Descriptor{
			Name:        "pcb_connector_stroke",
			Description: "Check for valid stroke attributes in connectors of the PCB view in the SVG files referenced by the FZP",
			NeedsPath:   true,
		},
		New: func(p *fzp.Part, src *Source) Checker {
			return &pcbConnectorStroke{part: p, src: src}
		},
	}
)

func checkConnectorLayers(p *fzp.Part, f *Findings) {
	for _, c := range p.FindAll("connector") {
		id := fzp.Attr(c, "id")
		for _, layer := range fzp.Descendants(c, "ConnectorLayer", false) {
			for _, attr := range []string{"layer", "svgId", "terminalId"} {
				if fzp.Attr(layer, attr) == "" {
					f.Errorf("ConnectorLayer missing '%s' in Connector '%s'.", attr, id)
				}
			}
		}
	}
}

// connectorTerminal checks that schematic terminal references resolve and
// can drop the ones that do not.
type connectorTerminal struct {
	part    *fzp.Part
	src     *Source
	invalid []doctor.TerminalRef
}

func (c *connectorTerminal) Check(r *report.Report) report.Result {
	f := NewFindings("connector_terminal", r)
	c.invalid = nil

	path, ok := c.part.GraphicPathForView(c.src.Path, fzp.SchematicView, "")
	if !ok {
		return f.Result()
	}
	var g *svg.Graphic
	loaded := false

	for _, conn := range c.part.Connectors() {
		for _, v := range conn.Views {
			if v.View != fzp.SchematicView {
				continue
			}
			for _, e := range v.Entries {
				if e.Elem.SelectAttr("terminalId") == nil {
					continue
				}
				if !loaded {
					var err error
					g, err = c.src.Load(path)
					loaded = true
					if err != nil && !IsNotExist(err) {
						f.ErrorAt(path, "Error parsing SVG file: %v", err)
					}
				}
				// A missing graphic satisfies every terminal. A broken one is reported once.
				if g == nil {
					return f.Result()
				}
				if g.ElementByID(e.TerminalID) == nil {
					f.Errorf("Connector '%s' references missing terminal '%s' in SVG", conn.ID, e.TerminalID)
					c.invalid = append(c.invalid, doctor.TerminalRef{ConnectorID: conn.ID, TerminalID: e.TerminalID})
				}
			}
		}
	}
	return f.Result()
}

// Fix removes the terminalId references found missing by Check.
func (c *connectorTerminal) Fix() ([]doctor.Fix, error) {
	if len(c.invalid) == 0 {
		return nil, nil
	}
	fixes, err := doctor.Apply(c.src.Path, doctor.RemoveTerminalIDs(c.invalid))
	if err != nil {
		return nil, err
	}
	c.invalid = nil
	return fixes, nil
}

// connectorVisibility checks that every connector a user can click on is
// painted in its graphic.
type connectorVisibility struct {
	part *fzp.Part
	src  *Source
}

func (c *connectorVisibility) Check(r *report.Report) report.Result {
	f := NewFindings("connector_visibility", r)
	failed := make(map[string]bool)

	for _, conn := range c.part.Connectors() {
		for _, v := range conn.Views {
			for _, e := range v.Entries {
				if e.HasLegID || e.Exempt() {
					continue
				}
				if e.SvgID == "" {
					f.Errorf("Connector %s does not reference an element in layer %s.", conn.ID, e.Layer)
					continue
				}
				path, ok := c.part.GraphicPathForView(c.src.Path, v.View, e.Layer)
				if !ok {
					continue
				}
				g, err := c.src.Load(path)
				if err != nil {
					if failed[path] {
						continue
					}
					failed[path] = true
					if IsNotExist(err) {
						f.WarnAt(path, "Invalid SVG path '%s' for connector '%s'", path, e.SvgID)
					} else {
						f.ErrorAt(path, "Error parsing SVG file: %v", err)
					}
					continue
				}
				el := g.ElementByID(e.SvgID)
				if el == nil {
					f.ErrorAt(path, "Connector element '%s' in layer '%s' not found", e.SvgID, e.Layer)
					continue
				}
				visible, err := svg.Visible(el)
				switch {
				case err != nil:
					f.ErrorAt(path, "Error in %s: %v", e.SvgID, err)
				case !visible:
					f.ErrorAt(path, "Invisible connector '%s' in layer '%s'", e.SvgID, e.Layer)
				}
			}
		}
	}
	return f.Result()
}

// pcbConnectorStroke checks that stroked PCB pads have a stroke paint.
type pcbConnectorStroke struct {
	part *fzp.Part
	src  *Source
}

func (c *pcbConnectorStroke) Check(r *report.Report) report.Result {
	f := NewFindings("pcb_connector_stroke", r)

	path, ok := c.part.GraphicPathForView(c.src.Path, fzp.PCBView, "")
	if !ok {
		return f.Result()
	}
	var g *svg.Graphic

	for _, conn := range c.part.Connectors() {
		for _, v := range conn.Views {
			if v.View != fzp.PCBView {
				continue
			}
			for _, e := range v.Entries {
				if e.SvgID == "" {
					continue
				}
				if g == nil {
					var err error
					if g, err = c.src.Load(path); err != nil {
						if IsNotExist(err) {
							f.ErrorAt(path, "SVG file not found: %s", path)
						} else {
							f.ErrorAt(path, "Failed to parse SVG file: %v", err)
						}
						return f.Result()
					}
				}
				el := g.ElementByID(e.SvgID)
				if el == nil {
					f.ErrorAt(path, "Connector %s not found in %s", e.SvgID, path)
					continue
				}
				valid, err := svg.ValidStroke(el)
				switch {
				case err != nil:
					f.ErrorAt(path, "Failure with %s: %v", e.SvgID, err)
				case !valid:
					f.ErrorAt(path, "Invalid stroke for connector '%s' in PCB view", e.SvgID)
				}
			}
		}
	}
	return f.Result()
}
