package checks

import (
	"regexp"
	"strings"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/report"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/svg"
)

// graphicRule adapts a function over a graphic to a Checker.
type graphicRule struct {
	name     string
	g        *svg.Graphic
	layerIDs []string
	rule     func(*svg.Graphic, []string, *Findings)
}

func (c graphicRule) Check(r *report.Report) report.Result {
	f := NewFindings(c.name, r)
	c.rule(c.g, c.layerIDs, f)
	return f.Result()
}

func graphicEntry(name, description string, rule func(*svg.Graphic, []string, *Findings)) GraphicEntry {
	return GraphicEntry{
		Descriptor: Descriptor{Name: name, Description: description},
		New: func(g *svg.Graphic, layerIDs []string) Checker {
			return graphicRule{name: name, g: g, layerIDs: layerIDs, rule: rule}
		},
	}
}

var (
	viewBoxEntry = graphicEntry("viewbox",
		"Check that the viewBox attribute is valid", checkViewBox)
	idsEntry = graphicEntry("ids",
		"Check that all id attributes are unique", checkIDs)
	matrixEntry = graphicEntry("matrix",
		"Checks for malformed matrix transformations in SVG files", checkMatrix)
	layerNestingEntry = graphicEntry("layer_nesting",
		"Check that layer groups are not incorrectly nested (e.g. silkscreen within breadboard)", checkLayerNesting)
)

const number = `[-+]?(?:\d+(?:\.\d+)?|\.\d+)`

var (
	viewBoxPattern = regexp.MustCompile(`^` + number + `(?:\s+` + number + `){3}$`)
	matrixCall     = regexp.MustCompile(`matrix\s*\(([^)]*)\)`)
	matrixSep      = regexp.MustCompile(`[,\s]+`)
	// Numbers may start with a dot, but a dot must be followed by a digit.
	matrixValue = regexp.MustCompile(`^[-+]?(\d+|\d*\.\d+)([eE][-+]?\d+)?$`)
)

func checkViewBox(g *svg.Graphic, layerIDs []string, f *Findings) {
	// Icons scale to fit and do not need one.
	if len(layerIDs) == 1 && layerIDs[0] == "icon" {
		return
	}
	attr := g.Root().SelectAttr("viewBox")
	if attr == nil {
		f.ErrorAt(g.Path, "Missing viewBox attribute")
		return
	}
	if !viewBoxPattern.MatchString(strings.TrimSpace(attr.Value)) {
		f.ErrorAt(g.Path, "Invalid viewBox attribute: %s", attr.Value)
	}
}

func checkIDs(g *svg.Graphic, _ []string, f *Findings) {
	seen := make(map[string]bool)
	for _, el := range g.Elements() {
		attr := el.SelectAttr("id")
		if attr == nil {
			continue
		}
		if seen[attr.Value] {
			f.ErrorAt(g.Path, "Duplicate id attribute: %s", attr.Value)
			continue
		}
		seen[attr.Value] = true
	}
}

func checkMatrix(g *svg.Graphic, _ []string, f *Findings) {
	for _, el := range g.Elements() {
		transform := el.SelectAttrValue("transform", "")
		if !strings.Contains(transform, "matrix") {
			continue
		}
		id := el.SelectAttrValue("id", "")
		m := matrixCall.FindStringSubmatch(transform)
		if m == nil {
			f.ErrorAt(g.Path, "Malformed matrix transform in element %s: %s", id, transform)
			continue
		}
		values := matrixSep.Split(strings.TrimSpace(m[1]), -1)
		if len(values) != 6 {
			f.ErrorAt(g.Path, "Invalid matrix transform (wrong number of values) in element %s: %s", id, transform)
			continue
		}
		for _, v := range values {
			if !matrixValue.MatchString(v) {
				f.ErrorAt(g.Path, "Invalid matrix transform (invalid value) in element %s: %s", id, transform)
				break
			}
		}
	}
}

// forbiddenNesting lists, per layer group, the layer groups that must not
// appear inside it.
var forbiddenNesting = []struct {
	parent   string
	children []string
}{
	{"breadboard", []string{"schematic", "silkscreen", "silkscreen0", "copper0", "copper1"}},
	{"schematic", []string{"breadboard", "silkscreen", "silkscreen0", "copper0", "copper1"}},
	{"icon", []string{"silkscreen", "silkscreen0", "copper0", "copper1", "breadboard", "schematic"}},
	{"silkscreen", []string{"breadboard", "schematic", "copper0", "copper1"}},
	{"silkscreen0", []string{"breadboard", "schematic", "copper0", "copper1"}},
	{"copper0", []string{"breadboard", "schematic", "silkscreen", "silkscreen0"}},
	{"copper1", []string{"breadboard", "schematic", "silkscreen", "silkscreen0"}},
}

func checkLayerNesting(g *svg.Graphic, _ []string, f *Findings) {
	for _, rule := range forbiddenNesting {
		for _, group := range svg.ElementsByID(g.Root(), rule.parent) {
			for _, child := range rule.children {
				for range svg.ElementsByID(group, child) {
					f.ErrorAt(g.Path, "Found '%s' layer nested inside '%s' group, which is invalid", child, rule.parent)
				}
			}
		}
	}
}
