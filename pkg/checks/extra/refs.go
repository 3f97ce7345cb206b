package extra

import (
	"slices"
	"strings"

	"github.com/beevik/etree"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/checks"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/fzp"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/report"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/svg"
)

func init() {
	checks.RegisterExtension(checks.MetadataEntry{
		Descriptor: checks.Descriptor{
			Name:        "missing_connector_refs",
			Description: "Check that all connectors in SVG layer groups are properly referenced in FZP",
			NeedsPath:   true,
		},
		New: func(p *fzp.Part, src *checks.Source) checks.Checker {
			return &missingConnectorRefs{part: p, src: src}
		},
	})
}

// viewLayers are the layer groups searched for pins and pads per view.
var viewLayers = []struct {
	view   string
	layers []string
}{
	{fzp.PCBView, []string{"copper0", "copper1"}},
	{fzp.BreadboardView, []string{"breadboard"}},
	{fzp.SchematicView, []string{"schematic"}},
}

// missingConnectorRefs checks that every pin or pad drawn inside a layer
// group is declared on that layer by the matching connector.
type missingConnectorRefs struct {
	part *fzp.Part
	src  *checks.Source
}

func (c *missingConnectorRefs) Check(r *report.Report) report.Result {
	f := checks.NewFindings("missing_connector_refs", r)
	for _, vl := range viewLayers {
		v, ok := c.part.View(vl.view)
		if !ok || !v.Layers || v.Image == "" {
			continue
		}
		path, ok := fzp.GraphicPath(c.src.Path, v.Image, v.Name)
		if !ok {
			continue
		}
		g, err := c.src.Load(path)
		if err != nil {
			f.ErrorAt(path, "Error processing SVG file %s: %v", path, err)
			continue
		}

		var order []string
		found := make(map[string][]string)
		for _, layer := range vl.layers {
			for _, group := range svg.ElementsByID(g.Root(), layer) {
				for _, el := range group.ChildElements() {
					svg.Walk(el, func(e *etree.Element) {
						id := e.SelectAttrValue("id", "")
						if !isPinID(id) || slices.Contains(found[id], layer) {
							return
						}
						if found[id] == nil {
							order = append(order, id)
						}
						found[id] = append(found[id], layer)
					})
				}
			}
		}

		for _, id := range order {
			for _, layer := range found[id] {
				if !c.declares(connectorForGraphic(id), vl.view, layer) {
					f.ErrorAt(path, "Connector %s is in %s layer in SVG but not referenced in FZP %s", id, layer, vl.view)
				}
			}
		}
	}
	return f.Result()
}

// declares reports whether the connector has an entry for layer in view.
func (c *missingConnectorRefs) declares(connectorID, view, layer string) bool {
	conn, ok := c.part.Connector(connectorID)
	if !ok {
		return false
	}
	for _, v := range conn.Views {
		if v.View != view {
			continue
		}
		for _, e := range v.Entries {
			if e.Layer == layer {
				return true
			}
		}
	}
	return false
}

func isPinID(id string) bool {
	return strings.HasPrefix(id, "connector") && (strings.Contains(id, "pin") || strings.Contains(id, "pad"))
}

// connectorForGraphic maps a graphic id such as connector3pin to the
// connector id connector3.
func connectorForGraphic(id string) string {
	n := strings.NewReplacer("connector", "", "pin", "", "pad", "").Replace(id)
	return "connector" + n
}
