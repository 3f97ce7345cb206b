package godog_test

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/doctor"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/report"
	"github.com/punnlert/modular-tutorial-fritzing/pkg/runner"
)

// testdataRoot returns the absolute path to the testdata directory.
func testdataRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "testdata")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find repo root (no go.mod)")
		}
		dir = parent
	}
}

func TestFeatures(t *testing.T) {
	featuresDir := filepath.Join(testdataRoot(t), "features")

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			initializeScenario(ctx)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{featuresDir},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("feature scenarios failed")
	}
}

// scenarioState holds per-scenario state for step definitions.
type scenarioState struct {
	root    string // parts library root holding core/ and svg/core/
	outcome *runner.Outcome

	// assertedIndices tracks messages matched by an assertion step. Used
	// by the "no other errors or warnings" step.
	assertedIndices map[int]bool
	lastMessage     string
}

func (s *scenarioState) partPath(name string) string {
	return filepath.Join(s.root, "core", filepath.FromSlash(name))
}

func (s *scenarioState) graphicPath(name string) string {
	return filepath.Join(s.root, "svg", "core", filepath.FromSlash(name))
}

func (s *scenarioState) targetPath(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".fzpz") {
		return filepath.Join(s.root, name)
	}
	return s.partPath(name)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func (s *scenarioState) check(name, checks string, fix bool) error {
	s.outcome = nil
	s.assertedIndices = nil
	s.lastMessage = ""

	log := logrus.New()
	log.SetOutput(io.Discard)
	r, err := runner.New(log)
	if err != nil {
		return err
	}
	var names []string
	for _, c := range strings.Split(checks, ",") {
		names = append(names, strings.TrimSpace(c))
	}
	metadata, graphic, err := r.Registry.Split(names)
	if err != nil {
		return err
	}
	o, err := r.Check(s.targetPath(name), metadata, graphic, fix)
	if err != nil {
		return err
	}
	s.outcome = o
	return nil
}

func (s *scenarioState) count(sev report.Severity, check string) int {
	n := 0
	for i, m := range s.outcome.Report.Messages {
		if m.Severity == sev && m.CheckID == check {
			n++
			s.lastMessage = m.Message
			s.markAsserted(i)
		}
	}
	return n
}

func (s *scenarioState) markAsserted(idx int) {
	if s.assertedIndices == nil {
		s.assertedIndices = make(map[int]bool)
	}
	s.assertedIndices[idx] = true
}

func initializeScenario(ctx *godog.ScenarioContext) {
	s := &scenarioState{}

	// ================================================================
	// Given steps
	// ================================================================

	ctx.Step(`^a parts library$`, func() error {
		dir, err := os.MkdirTemp("", "fzpcheck-features-*")
		if err != nil {
			return err
		}
		s.root = dir
		return nil
	})

	ctx.After(func(c2 context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.root != "" {
			os.RemoveAll(s.root)
		}
		return c2, err
	})

	ctx.Step(`^the part "([^"]*)" with:$`, func(name string, body *godog.DocString) error {
		return writeFile(s.partPath(name), body.Content)
	})

	ctx.Step(`^the graphic "([^"]*)" with:$`, func(name string, body *godog.DocString) error {
		return writeFile(s.graphicPath(name), body.Content)
	})

	ctx.Step(`^a bundle "([^"]*)" with members:$`, func(name string, table *godog.Table) error {
		f, err := os.Create(filepath.Join(s.root, name))
		if err != nil {
			return err
		}
		defer f.Close()
		zw := zip.NewWriter(f)
		for _, row := range table.Rows[1:] {
			member, source := row.Cells[0].Value, row.Cells[1].Value
			data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(source)))
			if err != nil {
				return err
			}
			w, err := zw.Create(member)
			if err != nil {
				return err
			}
			if _, err := w.Write(data); err != nil {
				return err
			}
		}
		return zw.Close()
	})

	// ================================================================
	// When steps
	// ================================================================

	ctx.Step(`^checking "([^"]*)" with "([^"]*)"$`, func(name, checks string) error {
		return s.check(name, checks, false)
	})

	ctx.Step(`^checking "([^"]*)" with "([^"]*)" and fixing$`, func(name, checks string) error {
		return s.check(name, checks, true)
	})

	// ================================================================
	// Then steps
	// ================================================================

	ctx.Step(`^(\d+) errors? and (\d+) warnings? (?:are|is) reported$`, func(errs, warns int) error {
		res := s.outcome.Result()
		if res.Errors != errs || res.Warnings != warns {
			return fmt.Errorf("expected %d errors and %d warnings, got %d and %d.\nGot messages:\n%s",
				errs, warns, res.Errors, res.Warnings, formatMessages(s.outcome.Report.Messages))
		}
		return nil
	})

	ctx.Step(`^error "([^"]*)" is reported (\d+) times?$`, func(check string, n int) error {
		if got := s.count(report.Error, check); got != n {
			return fmt.Errorf("expected error %s reported %d times, got %d.\nGot messages:\n%s",
				check, n, got, formatMessages(s.outcome.Report.Messages))
		}
		return nil
	})

	ctx.Step(`^warning "([^"]*)" is reported (\d+) times?$`, func(check string, n int) error {
		if got := s.count(report.Warning, check); got != n {
			return fmt.Errorf("expected warning %s reported %d times, got %d.\nGot messages:\n%s",
				check, n, got, formatMessages(s.outcome.Report.Messages))
		}
		return nil
	})

	ctx.Step(`^the message contains "([^"]*)"$`, func(text string) error {
		if !strings.Contains(s.lastMessage, text) {
			return fmt.Errorf("expected last message to contain %q, got %q", text, s.lastMessage)
		}
		return nil
	})

	ctx.Step(`^no other errors or warnings are reported$`, func() error {
		var unexpected []string
		for i, m := range s.outcome.Report.Messages {
			if !s.assertedIndices[i] {
				unexpected = append(unexpected, m.String())
			}
		}
		if len(unexpected) > 0 {
			return fmt.Errorf("unexpected errors/warnings:\n  %s", strings.Join(unexpected, "\n  "))
		}
		return nil
	})

	ctx.Step(`^(\d+) fix(?:es)? (?:is|are) applied$`, func(n int) error {
		if len(s.outcome.Fixes) != n {
			return fmt.Errorf("expected %d fixes, got %d: %v (fix errors: %v)",
				n, len(s.outcome.Fixes), s.outcome.Fixes, s.outcome.FixErrors)
		}
		return nil
	})

	ctx.Step(`^no fixes are applied$`, func() error {
		if len(s.outcome.Fixes) != 0 {
			return fmt.Errorf("expected no fixes, got %v", s.outcome.Fixes)
		}
		return nil
	})

	ctx.Step(`^the (part|graphic) "([^"]*)" (contains|does not contain) "([^"]*)"$`,
		func(kind, name, verb, text string) error {
			path := s.partPath(name)
			if kind == "graphic" {
				path = s.graphicPath(name)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			has := strings.Contains(string(data), text)
			if verb == "contains" && !has {
				return fmt.Errorf("%s does not contain %q:\n%s", name, text, data)
			}
			if verb == "does not contain" && has {
				return fmt.Errorf("%s still contains %q:\n%s", name, text, data)
			}
			return nil
		})

	ctx.Step(`^a backup of the (part|graphic) "([^"]*)" exists$`, func(kind, name string) error {
		path := s.partPath(name)
		if kind == "graphic" {
			path = s.graphicPath(name)
		}
		if _, err := os.Stat(path + doctor.BackupSuffix); err != nil {
			return fmt.Errorf("expected backup: %w", err)
		}
		return nil
	})

	ctx.Step(`^no file named "([^"]*)" exists outside the library$`, func(name string) error {
		if _, err := os.Stat(filepath.Join(filepath.Dir(s.root), name)); err == nil {
			return fmt.Errorf("%s was written outside the library", name)
		}
		return nil
	})
}

func formatMessages(msgs []report.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "  %s\n", m.String())
	}
	return b.String()
}
