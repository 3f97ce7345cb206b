// Package runner drives the checkers over parts and bundles and aggregates
// their findings.
package runner

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/checks"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/doctor"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/fzp"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/fzpz"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/report"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/svg"

	// Extension checkers register themselves with checks.Default.
	_ "github.com/punnlert/modular-tutorial-fritzing/pkg/checks/extra"
)

// Check ids used for fatal-for-target conditions.
const (
	CheckBundle = "bundle"
	CheckParse  = "parse"
	CheckView   = "view_graphic"
)

// Runner runs registered checkers against targets one at a time.
type Runner struct {
	Registry *checks.Registry
	Logger   logrus.FieldLogger

	// CacheSize bounds the graphics kept parsed per target.
	CacheSize int
}

// New creates a runner over the default registry.
func New(logger logrus.FieldLogger) (*Runner, error) {
	reg, err := checks.Default()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{Registry: reg, Logger: logger, CacheSize: svg.DefaultCacheSize}, nil
}

// Outcome is the result of checking one target.
type Outcome struct {
	Target string
	Report *report.Report
	Fixes  []doctor.Fix

	// FixErrors holds failures of fix operations. They never count as
	// check errors.
	FixErrors []string
}

// Result returns the (errors, warnings) totals of the target.
func (o *Outcome) Result() report.Result {
	return o.Report.Result()
}

// Fixed reports whether any fix changed a file.
func (o *Outcome) Fixed() bool {
	return len(o.Fixes) > 0
}

// Check runs the named metadata and graphic checkers against target, a part
// document or a bundle. Findings go into the outcome; the error is only set
// when a checker name is not registered. Bundles are never fixed.
func (r *Runner) Check(target string, metadata, graphic []string, fix bool) (*Outcome, error) {
	metaEntries, graphicEntries, err := r.lookup(metadata, graphic)
	if err != nil {
		return nil, err
	}

	log := r.Logger.WithField("target", target)
	out := &Outcome{Target: target, Report: report.NewReport()}

	partPath := target
	if strings.EqualFold(filepath.Ext(target), fzpz.Ext) {
		b, err := fzpz.Extract(target)
		if err != nil {
			log.WithError(err).Error("Bundle extraction failed")
			out.Report.AddWithLocation(report.Error, CheckBundle, fmt.Sprintf("Error extracting bundle: %v", err), target)
			return out, nil
		}
		defer func() {
			if err := b.Cleanup(); err != nil {
				log.WithError(err).Warn("Removing extraction directory failed")
			}
		}()
		log.Debugf("Extracted bundle to %s", b.Dir)
		partPath = b.PartPath
		// The extracted copy is removed afterwards, so repairs would be lost.
		if fix {
			log.Warn("Fixes are not applied to bundles; extract the bundle to repair it")
			fix = false
		}
	}

	part, err := fzp.Open(partPath)
	if err != nil {
		log.WithError(err).Error("Invalid XML")
		out.Report.AddWithLocation(report.Error, CheckParse, fmt.Sprintf("Invalid XML: %v", err), target)
		return out, nil
	}
	defer part.Release()

	cache := svg.NewCache(r.CacheSize)
	defer func() {
		log.Debugf("Releasing %d cached graphics", cache.Len())
		cache.Purge()
	}()
	src := &checks.Source{Path: partPath, Graphics: cache}

	log.Debugf("Scanning file: %s", partPath)
	for _, e := range metaEntries {
		var s *checks.Source
		if e.NeedsPath {
			s = src
		}
		log.Debugf("Running check: %s", e.Name)
		c := e.New(part, s)
		res := r.run(c, out.Report, target)
		if fix && res.Errors > 0 && e.CanFix {
			r.fix(c, out, log)
		}
	}

	if len(graphicEntries) > 0 {
		r.checkGraphics(part, partPath, graphicEntries, fix, cache, out, log)
	}

	res := out.Result()
	if res.Errors > 0 || res.Warnings > 0 {
		log.WithFields(logrus.Fields{"errors": res.Errors, "warnings": res.Warnings}).Info("Check finished")
	}
	return out, nil
}

func (r *Runner) checkGraphics(part *fzp.Part, partPath string, entries []checks.GraphicEntry, fix bool,
	cache *svg.Cache, out *Outcome, log logrus.FieldLogger) {
	for _, v := range part.Views() {
		if v.Name == fzp.DefaultUnits {
			continue
		}
		if !v.Layers {
			log.Warnf("No 'layers' element found in view '%s'", v.Name)
			continue
		}
		if v.Image == "" {
			continue
		}
		path, ok := fzp.GraphicPath(partPath, v.Image, v.Name)
		if !ok {
			continue
		}
		g, err := cache.Load(path)
		if err != nil {
			if checks.IsNotExist(err) {
				out.Report.AddWithLocation(report.Error, CheckView,
					fmt.Sprintf("SVG '%s' for view '%s' not found", path, v.Name), path)
			} else {
				out.Report.AddWithLocation(report.Error, CheckView,
					fmt.Sprintf("Invalid XML in SVG: %v", err), path)
			}
			continue
		}

		changed := false
		for _, e := range entries {
			log.Debugf("Running SVG check: %s on %s for %s", e.Name, path, v.Name)
			c := e.New(g, v.LayerIDs)
			res := r.run(c, out.Report, path)
			if fix && res.Errors > 0 && e.CanFix {
				if len(r.fix(c, out, log)) > 0 {
					changed = true
				}
			}
		}
		// Later views sharing the file must see the repaired content.
		if changed {
			cache.Forget(path)
		}
	}
}

// run executes c and gives its unlocated messages the default location.
func (r *Runner) run(c checks.Checker, rep *report.Report, location string) report.Result {
	start := len(rep.Messages)
	res := c.Check(rep)
	for i := start; i < len(rep.Messages); i++ {
		if rep.Messages[i].Location == "" {
			rep.Messages[i].Location = location
		}
	}
	return res
}

func (r *Runner) fix(c checks.Checker, out *Outcome, log logrus.FieldLogger) []doctor.Fix {
	fixer, ok := c.(checks.Fixer)
	if !ok {
		return nil
	}
	fixes, err := fixer.Fix()
	if err != nil {
		log.WithError(err).Warn("Error while fixing")
		out.FixErrors = append(out.FixErrors, err.Error())
		return nil
	}
	for _, f := range fixes {
		log.Info(f.String())
	}
	out.Fixes = append(out.Fixes, fixes...)
	return fixes
}

func (r *Runner) lookup(metadata, graphic []string) ([]checks.MetadataEntry, []checks.GraphicEntry, error) {
	var errs []error
	metaEntries := make([]checks.MetadataEntry, 0, len(metadata))
	for _, name := range metadata {
		e, err := r.Registry.Metadata(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		metaEntries = append(metaEntries, e)
	}
	graphicEntries := make([]checks.GraphicEntry, 0, len(graphic))
	for _, name := range graphic {
		e, err := r.Registry.Graphic(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		graphicEntries = append(graphicEntries, e)
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}
	return metaEntries, graphicEntries, nil
}

// CheckAll checks every target in order. A fatal condition in one target
// does not stop the batch.
func (r *Runner) CheckAll(targets []string, metadata, graphic []string, fix bool) ([]*Outcome, error) {
	outcomes := make([]*Outcome, 0, len(targets))
	for _, t := range targets {
		o, err := r.Check(t, metadata, graphic, fix)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

// Totals sums the results of all outcomes.
func Totals(outcomes []*Outcome) report.Result {
	var total report.Result
	for _, o := range outcomes {
		total = total.Add(o.Result())
	}
	return total
}
