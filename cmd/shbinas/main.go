// shbinas - PICA200 shader assembler
// Assembles .vsh/.gsh source into a DVLB shader binary
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gogpu/shbin"
	"github.com/gogpu/shbin/asm"
)

// errReported marks a failure whose diagnostics were already printed.
var errReported = errors.New("assembly failed")

type flags struct {
	config    string
	verbose   bool
	maxErrors int
	logFormat string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "shbinas [flags] <input> <output>",
		Short: "Assemble PICA200 shader source into a shbin file",
		Long: `shbinas assembles PICA200 vertex and geometry shader assembly into a
DVLB container. Every diagnostic is printed with source context; no
output file is written when assembly fails.

Settings are read from shbinas.toml in the working directory when present,
or from the file named by --config. Flags override the file.`,
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd, &f, args[0], args[1])
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.config, "config", "c", "", "config file (default: ./"+ConfigFileName+" if present)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log assembly passes at debug level")
	fl.IntVar(&f.maxErrors, "max-errors", 0, "stop after this many diagnostics (0: unlimited)")
	fl.StringVar(&f.logFormat, "log-format", "", "log encoding: console or json")
	return cmd
}

func run(cmd *cobra.Command, f *flags, input, output string) error {
	cfg, err := ResolveConfig(f.config)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-errors") {
		cfg.Assembler.MaxErrors = f.maxErrors
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	data, err := shbin.AssembleFile(input, shbin.Options{
		MaxErrors: cfg.Assembler.MaxErrors,
		Logger:    logger,
	})
	if err != nil {
		var errs asm.SourceErrors
		if errors.As(err, &errs) {
			fmt.Fprint(cmd.ErrOrStderr(), errs.FormatAll())
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d error(s)\n", input, errs.Len())
			return errReported
		}
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	logger.Info("wrote shader binary",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("bytes", len(data)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Successfully assembled %s to %s (%d bytes)\n", input, output, len(data))
	return nil
}
