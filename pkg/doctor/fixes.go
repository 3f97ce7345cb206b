package doctor

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultFont is the placeholder in font replacement tables that resolves to
// the default font of the view being repaired.
const DefaultFont = "default"

// RemoveEmptyBuses returns a patch deleting the serialized block of each
// listed bus, including its indentation and line break.
// Fixes bus_nodes.
func RemoveEmptyBuses(ids []string) Patch {
	return func(content string) (string, []Fix) {
		var fixes []Fix
		for _, id := range ids {
			if id == "" {
				continue
			}
			re := regexp.MustCompile(`[\t ]*<bus\b[^>]*?\sid\s*=\s*["']` + regexp.QuoteMeta(id) +
				`["'][^>]*?(?:/>|>(?s:.*?)</bus\s*>)[\t ]*(?:\r?\n)?`)
			n := len(re.FindAllStringIndex(content, -1))
			if n == 0 {
				continue
			}
			content = re.ReplaceAllLiteralString(content, "")
			fixes = append(fixes, Fix{
				CheckID:     "bus_nodes",
				Description: fmt.Sprintf("Removed empty bus '%s'", id),
			})
		}
		return content, fixes
	}
}

// TerminalRef names a terminalId reference of a connector's schematic view.
type TerminalRef struct {
	ConnectorID string
	TerminalID  string
}

var schematicBlock = regexp.MustCompile(`<schematicView\b[^>]*>(?s:.*?)</schematicView\s*>`)

// RemoveTerminalIDs returns a patch deleting the listed terminalId attributes
// from the schematic view block of their connector. Other views are left
// untouched.
// Fixes connector_terminal.
func RemoveTerminalIDs(refs []TerminalRef) Patch {
	return func(content string) (string, []Fix) {
		var fixes []Fix
		for _, ref := range refs {
			connector := regexp.MustCompile(`<connector\b[^>]*?\sid\s*=\s*["']` + regexp.QuoteMeta(ref.ConnectorID) +
				`["'][^>]*>(?s:.*?)</connector\s*>`)
			loc := connector.FindStringIndex(content)
			if loc == nil {
				continue
			}
			block := content[loc[0]:loc[1]]
			view := schematicBlock.FindStringIndex(block)
			if view == nil {
				continue
			}
			attr := regexp.MustCompile(`\s+terminalId\s*=\s*["']` + regexp.QuoteMeta(ref.TerminalID) + `["']`)
			viewText := block[view[0]:view[1]]
			patched := attr.ReplaceAllLiteralString(viewText, "")
			if patched == viewText {
				continue
			}
			block = block[:view[0]] + patched + block[view[1]:]
			content = content[:loc[0]] + block + content[loc[1]:]
			fixes = append(fixes, Fix{
				CheckID:     "connector_terminal",
				Description: fmt.Sprintf("Removed missing terminalId '%s' from connector '%s' in schematicView", ref.TerminalID, ref.ConnectorID),
			})
		}
		return content, fixes
	}
}

var (
	fontAttr  = regexp.MustCompile(`font-family\s*=\s*["']'?([^'">]+)'?["']`)
	fontStyle = regexp.MustCompile(`font-family\s*:\s*('?)([^;'">]+)'?`)
)

// ReplaceFonts returns a patch substituting font family names found in
// table, both in presentation attributes and in style declarations. The
// DefaultFont placeholder resolves to defaultFont. Names not in the table
// are never touched. Attributes are rewritten with double quotes.
// Fixes font_type.
func ReplaceFonts(table map[string]string, defaultFont string) Patch {
	replacement := func(font string) (string, bool) {
		repl, ok := table[strings.TrimSpace(font)]
		if !ok {
			return "", false
		}
		if repl == DefaultFont {
			repl = defaultFont
		}
		return repl, true
	}

	return func(content string) (string, []Fix) {
		var fixes []Fix
		record := func(from, to string) {
			fixes = append(fixes, Fix{
				CheckID:     "font_type",
				Description: fmt.Sprintf("Replaced font '%s' with '%s'", strings.TrimSpace(from), to),
			})
		}

		content = fontAttr.ReplaceAllStringFunc(content, func(m string) string {
			font := fontAttr.FindStringSubmatch(m)[1]
			repl, ok := replacement(font)
			if !ok {
				return m
			}
			record(font, repl)
			return `font-family="` + repl + `"`
		})

		content = fontStyle.ReplaceAllStringFunc(content, func(m string) string {
			sub := fontStyle.FindStringSubmatch(m)
			quote, font := sub[1], sub[2]
			repl, ok := replacement(font)
			if !ok {
				return m
			}
			record(font, repl)
			return "font-family:" + quote + repl + quote
		})

		return content, fixes
	}
}
