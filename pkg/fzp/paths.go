package fzp

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

var (
	pinHeaderBreadboard = regexp.MustCompile(`^generic_female_pin_header_\d+_100mil_bread\.svg$`)
	dipFootprint        = regexp.MustCompile(`^dip_\d+_\d+mil_pcb\.svg$`)
	jumperFootprint     = regexp.MustCompile(`^jumper_\d+_\d+mil_pcb\.svg$`)
)

// GraphicPath maps the image reference of a view to a graphic file.
//
// Parts in the library keep graphics at <parent of part dir>/svg/core/<image>.
// Extracted bundles keep them flat beside the part under their base name; that
// layout is chosen only when the flat file exists and the library one does not.
// The second return value is false for template graphics, which are exempt
// from cross-reference checks.
func GraphicPath(partPath, image, view string) (string, bool) {
	dir := filepath.Dir(partPath)
	standard := filepath.Join(filepath.Dir(dir), "svg", "core", filepath.FromSlash(image))
	flat := filepath.Join(dir, filepath.Base(filepath.FromSlash(image)))

	path := standard
	if fileExists(flat) && !fileExists(standard) {
		path = flat
	}
	if IsTemplate(path, view) {
		return "", false
	}
	return path, true
}

// IsTemplate reports whether the graphic is a generic placeholder for the view.
func IsTemplate(graphicPath, view string) bool {
	name := filepath.Base(graphicPath)
	switch view {
	case BreadboardView:
		return strings.HasPrefix(name, "generic_ic_") || pinHeaderBreadboard.MatchString(name)
	case IconView:
		return strings.HasPrefix(name, "generic_ic_")
	case SchematicView:
		return strings.HasPrefix(name, "generic_")
	case PCBView:
		return dipFootprint.MatchString(name) || jumperFootprint.MatchString(name)
	}
	return false
}

// GraphicPathForView resolves the graphic of the named view for the part
// stored at partPath. When layer is
// non-empty only a view declaring that layer id qualifies. The second return
// value is false when no image is declared or the graphic is a template.
func (p *Part) GraphicPathForView(partPath, view, layer string) (string, bool) {
	for _, v := range p.Views() {
		if v.Name != view || !v.Layers {
			continue
		}
		if layer != "" && !slices.Contains(v.LayerIDs, layer) {
			continue
		}
		if v.Image == "" {
			continue
		}
		return GraphicPath(partPath, v.Image, v.Name)
	}
	return "", false
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
