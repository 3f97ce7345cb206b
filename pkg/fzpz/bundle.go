// Package fzpz extracts part bundles (.fzpz zip archives) into a scratch
// directory so they can be checked like library parts.
//
// A bundle holds one part document and its graphics flat at the archive
// root. Every member path is validated before anything is written: absolute
// paths, parent-directory segments and paths escaping the extraction root
// abort extraction with ErrUnsafePath and leave no files behind.
package fzpz

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Ext is the bundle file extension.
const Ext = ".fzpz"

var (
	// ErrUnsafePath is returned when an archive member would be written
	// outside the extraction directory.
	ErrUnsafePath = errors.New("unsafe archive member path")

	// ErrNoPart is returned when the archive holds no part document.
	ErrNoPart = errors.New("no part document in bundle")
)

// Bundle is an extracted archive. Cleanup must be called on every exit path.
type Bundle struct {
	Source   string
	Dir      string
	PartPath string
}

// Extract validates and extracts the bundle at src into a new temporary
// directory and returns the location of the contained part document.
// On failure nothing is left on disk.
func Extract(src string) (*Bundle, error) {
	if !strings.EqualFold(filepath.Ext(src), Ext) {
		return nil, fmt.Errorf("bundle %s: file must have %s extension", src, Ext)
	}

	zr, err := zip.OpenReader(src)
	if err != nil {
		// With zipinsecurepath=0 the reader is returned alongside ErrInsecurePath.
		if zr != nil {
			zr.Close()
		}
		return nil, fmt.Errorf("opening bundle %s: %w", src, err)
	}
	defer zr.Close()

	if err := ValidateMembers(zr.File); err != nil {
		return nil, fmt.Errorf("security violation in bundle %s: %w", src, err)
	}

	dir, err := os.MkdirTemp("", "fzpz-*")
	if err != nil {
		return nil, fmt.Errorf("creating extraction dir: %w", err)
	}
	b := &Bundle{Source: src, Dir: dir}

	var parts []string
	for _, f := range zr.File {
		target, err := extractMember(f, dir)
		if err != nil {
			b.Cleanup()
			return nil, fmt.Errorf("extracting %s from %s: %w", f.Name, src, err)
		}
		if target != "" && filepath.Dir(target) == dir && strings.EqualFold(filepath.Ext(target), ".fzp") {
			parts = append(parts, target)
		}
	}

	switch len(parts) {
	case 0:
		b.Cleanup()
		return nil, fmt.Errorf("bundle %s: %w", src, ErrNoPart)
	case 1:
		b.PartPath = parts[0]
	default:
		b.Cleanup()
		return nil, fmt.Errorf("bundle %s: %d part documents found, expected one", src, len(parts))
	}
	return b, nil
}

// Cleanup removes the extraction directory. It is safe to call more than once
// and on a nil bundle.
func (b *Bundle) Cleanup() error {
	if b == nil || b.Dir == "" {
		return nil
	}
	err := os.RemoveAll(b.Dir)
	b.Dir = ""
	return err
}

// ValidateMembers checks every member path and reports all unsafe ones in a
// single error wrapping ErrUnsafePath.
func ValidateMembers(files []*zip.File) error {
	var unsafe []string
	for _, f := range files {
		if reason := unsafeReason(f); reason != "" {
			unsafe = append(unsafe, reason+": "+f.Name)
		}
	}
	if len(unsafe) > 0 {
		return fmt.Errorf("%w: %s", ErrUnsafePath, strings.Join(unsafe, "; "))
	}
	return nil
}

func unsafeReason(f *zip.File) string {
	name := f.Name
	slashed := strings.ReplaceAll(name, `\`, "/")
	switch {
	case name == "":
		return "empty path"
	case strings.HasPrefix(slashed, "/") || filepath.IsAbs(name) || hasVolume(slashed):
		return "absolute path"
	}
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return "directory traversal"
		}
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") || path.IsAbs(clean) {
		return "path escape attempt"
	}
	if f.Mode()&os.ModeSymlink != 0 {
		return "symbolic link"
	}
	return ""
}

// hasVolume reports a Windows drive prefix such as "C:".
func hasVolume(p string) bool {
	return len(p) >= 2 && p[1] == ':' &&
		((p[0] >= 'a' && p[0] <= 'z') || (p[0] >= 'A' && p[0] <= 'Z'))
}

// extractMember writes one validated member below dir and returns the file
// written, or "" for directory entries.
func extractMember(f *zip.File, dir string) (string, error) {
	rel := filepath.FromSlash(path.Clean(strings.ReplaceAll(f.Name, `\`, "/")))
	target := filepath.Join(dir, rel)
	if target != dir && !strings.HasPrefix(target, dir+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}

	if f.FileInfo().IsDir() {
		return "", os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return "", err
	}
	return target, out.Close()
}
