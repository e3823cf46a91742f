package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/schemakit/jsonschema/cmd/jv/internal/config"
)

// Version is set at build time.
var Version = "dev"

var errInvalid = errors.New("one or more instances are invalid")

type flags struct {
	draft         draftValue
	output        outputValue
	failFast      bool
	assertFormat  bool
	assertContent bool
	insecure      bool
	watch         bool
	debug         bool
	configPath    string
}

func newRootCmd(stdout, stderr io.Writer, level *slog.LevelVar, logger *slog.Logger) *cobra.Command {
	f := &flags{draft: "2020", output: "flag"}
	cmd := &cobra.Command{
		Use:   "jv [flags] <schema> [<instance>...]",
		Short: "Validate JSON and YAML documents against a JSON Schema",
		Long: `jv compiles a JSON Schema and validates each instance against it.
Schema and instances are file paths or urls; "-" reads an instance from stdin.
Files with .yaml or .yml extension are read as YAML.

Defaults for the flags below are read from .jv.yaml in the working directory.`,
		Version:       Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.debug {
				level.Set(slog.LevelDebug)
			}
			if err := f.applyConfig(cmd); err != nil {
				return err
			}
			v := &validator{
				flags:  f,
				stdin:  cmd.InOrStdin(),
				stdout: stdout,
				logger: logger,
			}
			if f.watch {
				return v.watch(cmd.Context(), args[0], args[1:])
			}
			return v.run(cmd.Context(), args[0], args[1:])
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fs := cmd.Flags()
	fs.VarP(&f.draft, "draft", "d", "draft used when '$schema' is missing (4, 6, 7, 2020)")
	fs.VarP(&f.output, "output", "o", "output format (flag, verbose, json)")
	fs.BoolVarP(&f.failFast, "fail-fast", "f", false, "stop at the first failing keyword")
	fs.BoolVar(&f.assertFormat, "assert-format", false, "treat format as an assertion")
	fs.BoolVar(&f.assertContent, "assert-content", false, "treat content keywords as assertions")
	fs.BoolVarP(&f.insecure, "insecure", "k", false, "do not verify TLS certificates of https urls")
	fs.BoolVarP(&f.watch, "watch", "w", false, "revalidate when the schema or an instance file changes")
	fs.BoolVar(&f.debug, "debug", false, "enable debug logging")
	fs.StringVar(&f.configPath, "config", "", "config file (default "+config.FileName+")")
	return cmd
}

// applyConfig sets the flags not given on the command line from the
// config file.
func (f *flags) applyConfig(cmd *cobra.Command) error {
	path, required := f.configPath, true
	if path == "" {
		path, required = config.FileName, false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	fs := cmd.Flags()
	if !fs.Changed("draft") {
		f.draft = draftValue(cfg.Draft)
	}
	if !fs.Changed("output") {
		f.output = outputValue(cfg.Output)
	}
	if !fs.Changed("fail-fast") {
		f.failFast = cfg.FailFast
	}
	if !fs.Changed("assert-format") {
		f.assertFormat = cfg.AssertFormat
	}
	if !fs.Changed("assert-content") {
		f.assertContent = cfg.AssertContent
	}
	if !fs.Changed("insecure") {
		f.insecure = cfg.Insecure
	}
	return nil
}

// run executes jv and returns the process exit code: 0 if every instance
// is valid, 1 if one is invalid, 2 on any other error.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	logger, closer, err := setupLogger(stderr, level)
	if closer != nil {
		defer closer.Close()
	}
	if err != nil {
		logger.Warn("logging to file disabled", "error", err)
	}

	cmd := newRootCmd(stdout, stderr, level, logger)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errInvalid) {
			return 1
		}
		if errors.Is(err, context.Canceled) {
			return 0
		}
		logger.Error("jv failed", "error", err)
		return 2
	}
	return 0
}
