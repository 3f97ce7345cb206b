package checks

import (
	"github.com/punnlert/modular-tutorial-fritzing/pkg/fzp"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/report"
)

var layerIDsEntry = MetadataEntry{
	Descriptor: Descriptor{
		Name:        "layer_ids",
		Description: "Check that layer IDs in FZP file match with IDs in corresponding SVG files",
		NeedsPath:   true,
	},
	New: func(p *fzp.Part, src *Source) Checker {
		return &layerIDs{part: p, src: src}
	},
}

// layerIDs checks that every declared layer exists as an element id in the
// view's graphic.
type layerIDs struct {
	part *fzp.Part
	src  *Source
}

func (c *layerIDs) Check(r *report.Report) report.Result {
	f := NewFindings("layer_ids", r)
	for _, v := range c.part.Views() {
		if v.Name == fzp.DefaultUnits || !v.Layers || v.Image == "" {
			continue
		}
		path, ok := fzp.GraphicPath(c.src.Path, v.Image, v.Name)
		if !ok {
			continue
		}
		g, err := c.src.Load(path)
		if err != nil {
			if IsNotExist(err) {
				f.ErrorAt(path, "SVG file not found: %s", path)
			} else {
				f.ErrorAt(path, "Error parsing SVG file %s: %v", path, err)
			}
			continue
		}
		for _, id := range v.LayerIDs {
			if g.ElementByID(id) == nil {
				f.ErrorAt(path, "Layer ID '%s' from %s not found in SVG file %s", id, v.Name, path)
			}
		}
	}
	return f.Result()
}
