package checks

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/doctor"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/report"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/svg"
)

// ValidFonts are the font families the part editor ships.
var ValidFonts = map[string]bool{
	"Noto Sans":         true,
	"OCR-Fritzing-mono": true,
	"Droid Sans":        true, // deprecated, use Noto Sans
	"Droid Sans Mono":   true, // deprecated, use Noto Sans
	"OCRA":              true,
	"Segment16C":        true,
}

// FontReplacements maps known-bad font names to allowed ones.
// doctor.DefaultFont resolves to the default font of the view.
var FontReplacements = map[string]string{
	"Segment16C Bold.ttf":      "Segment16C",
	"DroidSans-Bold":           "Noto Sans",
	"NotoSans-Regular":         "Noto Sans",
	"OCRAStd":                  "OCR-Fritzing-mono",
	"OCRATributeW01 - Regular": "OCR-Fritzing-mono",
	"ocra10":                   "OCR-Fritzing-mono",
	"OCRATributeW01-Regular":   "OCR-Fritzing-mono",
	"OpenSans":                 "Noto Sans",
	"ArialMT":                  doctor.DefaultFont,
	"MyriadPro - Regular":      doctor.DefaultFont,
	"MyriadPro-Regular":        doctor.DefaultFont,
	"HelveticaNeueLTStd-Roman": doctor.DefaultFont,
	"DroidSans - Bold":         "Noto Sans",
	"DroidSans":                "Noto Sans",
	"Droid":                    "Noto Sans",
	"Droid Sans Mono":          doctor.DefaultFont,
	"DroidSansMono":            doctor.DefaultFont,
	"Arial-BoldMT":             "Noto Sans",
	"EurostileLTStd":           "Noto Sans",
}

const (
	pcbFont  = "OCR-Fritzing-mono"
	sansFont = "Noto Sans"
)

var fontSizePattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

var (
	fontSizeEntry = graphicEntry("font_size",
		"Check that the font-size attribute of each text element is a valid number", checkFontSizes)

	fontTypeEntry = GraphicEntry{
		Descriptor: Descriptor{
			Name:        "font_type",
			Description: "Check that font-family attributes use only allowed fonts (Noto Sans, OCR-Fritzing-mono, DroidSans, OCRA)",
			CanFix:      true,
		},
		New: func(g *svg.Graphic, layerIDs []string) Checker {
			return newFontType(g, layerIDs)
		},
	}
)

func checkFontSizes(g *svg.Graphic, _ []string, f *Findings) {
	for _, el := range g.Elements() {
		if svg.IsText(el) {
			checkFontSize(el, f)
		}
	}
}

// checkFontSize falls back into the first tspan of a text element that has
// no size of its own.
func checkFontSize(el *etree.Element, f *Findings) {
	size, ok, err := svg.ResolveInherited(el, "font-size")
	if err != nil {
		f.Errorf("Cannot resolve font size of element [%s]: %v", textContent(el), err)
		return
	}
	if !ok {
		if ts := el.SelectElement("tspan"); el.Tag == "text" && ts != nil {
			checkFontSize(ts, f)
			return
		}
		f.Errorf("No font size found for element [%s]", textContent(el))
		return
	}
	if !fontSizePattern.MatchString(size) {
		f.Errorf("Invalid font size %s unit in element: [%s]", size, textContent(el))
	}
}

// fontType checks font families and rewrites known-bad ones.
type fontType struct {
	g           *svg.Graphic
	defaultFont string
	replaceable bool // a bad family found by Check has a replacement
}

func newFontType(g *svg.Graphic, layerIDs []string) *fontType {
	c := &fontType{g: g, defaultFont: sansFont}
	for _, id := range layerIDs {
		if strings.HasPrefix(id, "copper") || strings.HasPrefix(id, "silkscreen") {
			c.defaultFont = pcbFont
			break
		}
	}
	return c
}

func (c *fontType) Check(r *report.Report) report.Result {
	f := NewFindings("font_type", r)
	for _, el := range c.g.Elements() {
		if svg.IsText(el) {
			c.checkElement(el, f)
		}
	}
	return f.Result()
}

func (c *fontType) checkElement(el *etree.Element, f *Findings) {
	family, ok, err := svg.ResolveInherited(el, "font-family")
	if err != nil {
		f.Errorf("Cannot resolve font family of element [%s]: %v", textContent(el), err)
		return
	}
	if !ok {
		if ts := el.SelectElement("tspan"); el.Tag == "text" && ts != nil {
			c.checkElement(ts, f)
			return
		}
		f.Errorf("No font family found for element [%s]", textContent(el))
		return
	}
	family = strings.Trim(strings.TrimSpace(family), `"'`)
	if !ValidFonts[family] {
		if _, ok := FontReplacements[family]; ok {
			c.replaceable = true
		}
		f.Errorf("Invalid font family '%s' in element: [%s]", family, textContent(el))
	}
}

// Fix rewrites every font family listed in FontReplacements. The graphic
// is left unread when Check found nothing it could replace.
func (c *fontType) Fix() ([]doctor.Fix, error) {
	if c.g.Path == "" || !c.replaceable {
		return nil, nil
	}
	return doctor.Apply(c.g.Path, doctor.ReplaceFonts(FontReplacements, c.defaultFont))
}

// textContent returns the character data below el with whitespace collapsed.
func textContent(el *etree.Element) string {
	var b strings.Builder
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		for _, t := range e.Child {
			switch t := t.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
				b.WriteByte(' ')
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(el)
	return strings.Join(strings.Fields(b.String()), " ")
}
