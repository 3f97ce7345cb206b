// Package checks holds the part and graphic checkers and the registry that
// dispatches them by name.
//
// Metadata checkers run against a parsed part document. Those whose rule
// needs to reach a graphic declare NeedsPath and receive a Source giving the
// part's location on disk and the per-target graphic cache. Graphic checkers
// run against one parsed graphic together with the layer ids its view
// declares.
package checks

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/doctor"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/fzp"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/report"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/svg"
)

// Checker runs one rule and records its findings in r.
type Checker interface {
	Check(r *report.Report) report.Result
}

// Fixer is implemented by checkers that can repair what they found. Fix is
// only meaningful after Check; it returns no fixes when there is nothing to
// repair, without touching the disk.
type Fixer interface {
	Fix() ([]doctor.Fix, error)
}

// Descriptor describes a checker to the registry and the runner.
type Descriptor struct {
	Name        string
	Description string
	NeedsPath   bool
	CanFix      bool
}

// MetadataEntry registers a part document checker.
type MetadataEntry struct {
	Descriptor
	New func(part *fzp.Part, src *Source) Checker
}

// GraphicEntry registers a graphic checker.
type GraphicEntry struct {
	Descriptor
	New func(g *svg.Graphic, layerIDs []string) Checker
}

// Source locates the part being checked. It is passed to checkers whose
// descriptor sets NeedsPath and is nil otherwise.
type Source struct {
	Path     string
	Graphics *svg.Cache
}

// Load returns the parsed graphic at path, sharing it through the cache when
// one is configured.
func (s *Source) Load(path string) (*svg.Graphic, error) {
	if s.Graphics != nil {
		return s.Graphics.Load(path)
	}
	return svg.Open(path)
}

// Findings accumulates the messages of one checker run.
type Findings struct {
	check  string
	r      *report.Report
	result report.Result
}

// NewFindings starts collecting messages for check into r.
func NewFindings(check string, r *report.Report) *Findings {
	return &Findings{check: check, r: r}
}

// Errorf records an error.
func (f *Findings) Errorf(format string, args ...any) {
	f.r.Add(report.Error, f.check, fmt.Sprintf(format, args...))
	f.result.Errors++
}

// Warnf records a warning.
func (f *Findings) Warnf(format string, args ...any) {
	f.r.Add(report.Warning, f.check, fmt.Sprintf(format, args...))
	f.result.Warnings++
}

// ErrorAt records an error located in the given file.
func (f *Findings) ErrorAt(location, format string, args ...any) {
	f.r.AddWithLocation(report.Error, f.check, fmt.Sprintf(format, args...), location)
	f.result.Errors++
}

// WarnAt records a warning located in the given file.
func (f *Findings) WarnAt(location, format string, args ...any) {
	f.r.AddWithLocation(report.Warning, f.check, fmt.Sprintf(format, args...), location)
	f.result.Warnings++
}

// Result returns the totals recorded so far.
func (f *Findings) Result() report.Result {
	return f.result
}

// IsNotExist reports whether a graphic load failed because the file is missing.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
