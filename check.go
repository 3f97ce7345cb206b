package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/config"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/report"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/runner"
)

type checkOptions struct {
	path     string
	checks   []string
	graphic  string
	listFile string
	fix      bool
	output   string
	jsonPath string
	ignore   []string
}

// merge fills options not given on the command line from cfg.
func (o *checkOptions) merge(cmd *cobra.Command, cfg *config.Config) {
	if !cmd.Flags().Changed("checks") {
		o.checks = cfg.Checks
	}
	if !cmd.Flags().Changed("fix") {
		o.fix = cfg.Fix
	}
	if o.output == "" {
		o.output = cfg.Output
	}
	if o.path == "" {
		o.path = cfg.PartsDir
	}
	o.ignore = cfg.Ignore
}

func runCheck(w io.Writer, log *logrus.Logger, o checkOptions) error {
	if o.path == "" {
		o.path = "."
	}
	r, err := runner.New(log)
	if err != nil {
		return usageError(err)
	}
	metadata, graphic, err := r.Registry.Split(o.checks)
	if err != nil {
		return usageError(err)
	}
	if len(metadata) == 0 && len(graphic) == 0 {
		return usageError(errors.New("no valid check types specified"))
	}

	targets, err := runner.CollectTargets(o.path, runner.CollectOptions{
		ListFile: o.listFile,
		Graphic:  o.graphic,
		Ignore:   o.ignore,
	})
	if err != nil {
		return usageError(err)
	}
	log.Debugf("Checking %d FZP files", len(targets))

	outcomes, err := r.CheckAll(targets, metadata, graphic, o.fix)
	if err != nil {
		return usageError(err)
	}

	if err := writeOutcomes(w, outcomes, o); err != nil {
		return usageError(err)
	}

	if runner.Totals(outcomes).Errors > 0 {
		return &exitError{code: exitFindings}
	}
	return nil
}

func writeOutcomes(w io.Writer, outcomes []*runner.Outcome, o checkOptions) error {
	if o.output == config.OutputJSON {
		if err := writeJSON(w, outcomes); err != nil {
			return err
		}
	} else {
		writeText(w, outcomes)
	}

	if o.jsonPath == "" {
		return nil
	}
	f, err := os.Create(o.jsonPath)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	defer f.Close()
	return writeJSON(f, outcomes)
}

func writeText(w io.Writer, outcomes []*runner.Outcome) {
	for _, o := range outcomes {
		res := o.Result()
		if res.Errors == 0 && res.Warnings == 0 && !o.Fixed() {
			continue
		}
		fmt.Fprintf(w, "%s\n", o.Target)
		o.Report.WriteText(w)
		for _, f := range o.Fixes {
			fmt.Fprintf(w, "Fixed: %s\n", f)
		}
		for _, e := range o.FixErrors {
			fmt.Fprintf(w, "Fix failed: %s\n", e)
		}
	}
	total := runner.Totals(outcomes)
	fmt.Fprintf(w, "Checked %d files. Total errors: %d, Total warnings: %d\n",
		len(outcomes), total.Errors, total.Warnings)
}

func writeJSON(w io.Writer, outcomes []*runner.Outcome) error {
	targets := make([]report.JSONOutput, 0, len(outcomes))
	for _, o := range outcomes {
		out := o.Report.JSON(o.Target)
		for _, f := range o.Fixes {
			out.Fixes = append(out.Fixes, f.String())
		}
		targets = append(targets, out)
	}
	return report.WriteBatchJSON(w, targets)
}
