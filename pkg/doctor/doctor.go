// Package doctor applies the narrow, mechanical repairs offered by the
// part and graphic checkers.
//
// Every repair is a minimal-diff text patch over the raw file: the bytes
// outside the patched spans are preserved exactly, so untouched markup is
// never reformatted. Before the first mutation of a file a ".bak" sidecar
// holding the original content is written; an existing sidecar is never
// overwritten, so it always holds the pre-repair original.
//
// Repairs:
//   - bus_nodes: removes buses that have no node members
//   - connector_terminal: removes schematic terminalId references to missing graphic elements
//   - font_type: replaces known-bad font family names with allowed ones
package doctor

import (
	"fmt"
	"os"
)

// Fix represents a single applied fix.
type Fix struct {
	CheckID     string
	Description string
	File        string
}

func (f Fix) String() string {
	return fmt.Sprintf("%s: %s [%s]", f.CheckID, f.Description, f.File)
}

// Patch rewrites file content and reports the fixes it made. A patch that
// finds nothing to change returns the content unchanged and no fixes.
type Patch func(content string) (string, []Fix)

// Apply runs patch over the file at path. When the patch changes the
// content, a backup is written first and the file is rewritten in place.
// The returned fixes carry path as their File.
func Apply(path string, patch Patch) ([]Fix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	original := string(data)
	patched, fixes := patch(original)
	if len(fixes) == 0 || patched == original {
		return nil, nil
	}

	if err := writeBackup(path, data); err != nil {
		return nil, err
	}
	if err := writeInPlace(path, []byte(patched)); err != nil {
		return nil, err
	}

	for i := range fixes {
		fixes[i].File = path
	}
	return fixes, nil
}
