package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/punnlert/modular-tutorial-fritzing/pkg/config"
)

const version = "0.1.0"

// Exit codes: 0=clean, 1=errors found, 2=configuration or usage error.
const (
	exitFindings = 1
	exitUsage    = 2
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: exitUsage, err: err}
}

func main() {
	err := rootCmd().Execute()
	if err == nil {
		os.Exit(0)
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", ee.err)
		}
		os.Exit(ee.code)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitUsage)
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	verbose    bool
}

func rootCmd() *cobra.Command {
	var (
		g    globalFlags
		opts checkOptions
	)

	cmd := &cobra.Command{
		Use:   "fzpcheck [path]",
		Short: "Check Fritzing parts and their graphics",
		Long: `fzpcheck validates Fritzing part documents (.fzp) and bundles (.fzpz)
against the graphics they reference in the breadboard, schematic, PCB and
icon views.

path is a part, a bundle, or a directory of parts. With --svg, every part
below the directory that references the graphic is checked. With --file,
the parts and graphics listed in the file are checked.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(cmd, g)
			if err != nil {
				return err
			}
			opts.merge(cmd, cfg)
			if len(args) == 1 {
				opts.path = args[0]
			}
			return runCheck(cmd.OutOrStdout(), log, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warning, error)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose output")

	cmd.Flags().StringSliceVarP(&opts.checks, "checks", "c", nil, "Check(s) to run (default: all)")
	cmd.Flags().StringVarP(&opts.graphic, "svg", "s", "", "Path to an SVG file to search for in FZP files")
	cmd.Flags().StringVarP(&opts.listFile, "file", "f", "", "Path to a file containing a list of SVG and FZP files to check")
	cmd.Flags().BoolVar(&opts.fix, "fix", false, "Try to automatically fix errors when possible")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output format (text, json)")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "Also write the JSON report to this file")

	cmd.AddCommand(listCmd(), watchCmd(&g), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fzpcheck %s\n", version)
		},
	})

	return cmd
}

// setup loads the configuration and builds the logger for a command.
func setup(cmd *cobra.Command, g globalFlags) (*config.Config, *logrus.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.Load(g.configPath)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, nil, usageError(err)
	}

	levelName := cfg.LogLevel
	if g.logLevel != "" {
		levelName = g.logLevel
	}
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		return nil, nil, usageError(err)
	}
	if g.verbose {
		level = logrus.DebugLevel
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Path != "" {
		log.WithField("config", cfg.Path).Debug("Loaded configuration")
	}
	return cfg, log, nil
}
