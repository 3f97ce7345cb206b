package runner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/fzpz"
)

// ErrUnsupportedTarget is returned for a file that is neither a part nor a
// bundle.
var ErrUnsupportedTarget = errors.New("not an FZP or FZPZ file")

const (
	partExt    = ".fzp"
	graphicExt = ".svg"
	obsolete   = "obsolete"
)

// IsTarget reports whether name has a part or bundle extension.
func IsTarget(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == partExt || ext == fzpz.Ext
}

// SearchTargetsReferencingGraphic returns the part documents below rootDir
// whose text mentions the base name of graphic. Parts under a directory
// named "obsolete" are skipped unless graphic itself lives under one.
func SearchTargetsReferencingGraphic(graphic, rootDir string) ([]string, error) {
	name := []byte(filepath.Base(graphic))
	withObsolete := hasObsoleteSegment(filepath.ToSlash(graphic))

	fsys := os.DirFS(rootDir)
	matches, err := doublestar.Glob(fsys, "**/*"+partExt)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", rootDir, err)
	}

	var out []string
	for _, m := range matches {
		if !withObsolete && hasObsoleteSegment(path.Dir(m)) {
			continue
		}
		data, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", m, err)
		}
		if bytes.Contains(data, name) {
			out = append(out, filepath.Join(rootDir, filepath.FromSlash(m)))
		}
	}
	slices.Sort(out)
	return out, nil
}

func hasObsoleteSegment(slashPath string) bool {
	return slices.Contains(strings.Split(slashPath, "/"), obsolete)
}

// CollectOptions selects how CollectTargets expands its base path.
type CollectOptions struct {
	// ListFile names a .json array or a newline separated text file of
	// parts and graphics, relative to the base path.
	ListFile string

	// Graphic selects every part below the base directory that references it.
	Graphic string

	// Ignore holds doublestar patterns matched against slash separated
	// target paths and their base names.
	Ignore []string
}

// CollectTargets expands base into the sorted, de-duplicated list of parts
// and bundles to check.
func CollectTargets(base string, opts CollectOptions) ([]string, error) {
	for _, pat := range opts.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("ignore pattern %q: %w", pat, doublestar.ErrBadPattern)
		}
	}

	set := make(map[string]bool)
	add := func(paths ...string) {
		for _, p := range paths {
			set[p] = true
		}
	}

	fi, statErr := os.Stat(base)
	switch {
	case opts.ListFile != "":
		entries, err := readList(opts.ListFile)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			switch {
			case IsTarget(e):
				add(filepath.Join(base, e))
			case strings.EqualFold(filepath.Ext(e), graphicExt):
				found, err := SearchTargetsReferencingGraphic(e, base)
				if err != nil {
					return nil, err
				}
				add(found...)
			}
		}
	case statErr != nil:
		return nil, statErr
	case opts.Graphic != "" && fi.IsDir():
		found, err := SearchTargetsReferencingGraphic(opts.Graphic, base)
		if err != nil {
			return nil, err
		}
		add(found...)
	case !fi.IsDir():
		if !IsTarget(base) {
			return nil, fmt.Errorf("%s: %w", base, ErrUnsupportedTarget)
		}
		add(base)
	default:
		entries, err := os.ReadDir(base)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && IsTarget(e.Name()) {
				add(filepath.Join(base, e.Name()))
			}
		}
	}

	out := make([]string, 0, len(set))
	for p := range set {
		ignored, err := matchesAny(opts.Ignore, p)
		if err != nil {
			return nil, err
		}
		if !ignored {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out, nil
}

func matchesAny(patterns []string, target string) (bool, error) {
	slash := filepath.ToSlash(target)
	for _, pat := range patterns {
		for _, candidate := range []string{slash, path.Base(slash)} {
			ok, err := doublestar.Match(pat, candidate)
			if err != nil {
				return false, fmt.Errorf("ignore pattern %q: %w", pat, err)
			}
			if ok {
				return true, nil
			}
		}
	}
	return false, nil
}

func readList(listFile string) ([]string, error) {
	data, err := os.ReadFile(listFile)
	if err != nil {
		return nil, fmt.Errorf("reading list file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(listFile), ".json") {
		var entries []string
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing list file %s: %w", listFile, err)
		}
		return entries, nil
	}
	var entries []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}
	return entries, nil
}
