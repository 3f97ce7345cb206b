// Package extra holds checkers registered from outside the built-in list.
// Importing it for side effects adds them to checks.Default.
package extra

import (
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
			Name:        "missing_leg_ids",
			Description: "Check that leg IDs defined in SVG are properly referenced in FZP",
			NeedsPath:   true,
		},
		New: func(p *fzp.Part, src *checks.Source) checks.Checker {
			return &missingLegIDs{part: p, src: src}
		},
	})
}

// missingLegIDs checks that every bendable leg drawn in the breadboard
// graphic belongs to a connector.
type missingLegIDs struct {
	part *fzp.Part
	src  *checks.Source
}

func (c *missingLegIDs) Check(r *report.Report) report.Result {
	f := checks.NewFindings("missing_leg_ids", r)

	path, ok := c.part.GraphicPathForView(c.src.Path, fzp.BreadboardView, "")
	if !ok {
		return f.Result()
	}
	g, err := c.src.Load(path)
	if err != nil {
		f.ErrorAt(path, "Error processing SVG file %s: %v", path, err)
		return f.Result()
	}

	referenced := make(map[string]bool)
	for _, conn := range c.part.Connectors() {
		for _, v := range conn.Views {
			if v.View != fzp.BreadboardView {
				continue
			}
			for _, e := range v.Entries {
				if e.HasLegID {
					referenced[e.LegID] = true
				}
			}
		}
	}

	svg.Walk(g.Root(), func(el *etree.Element) {
		id := el.SelectAttrValue("id", "")
		if !isLegID(id) || referenced[id] {
			return
		}
		f.ErrorAt(path, "Leg ID '%s' from SVG not referenced in any FZP connector", id)
	})
	return f.Result()
}

func isLegID(id string) bool {
	return strings.HasPrefix(id, "connector") && strings.HasSuffix(id, "leg")
}
