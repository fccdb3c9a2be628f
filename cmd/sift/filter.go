package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/Veraticus/sift/internal/classification"
	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/engine"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/report"
	"github.com/Veraticus/sift/internal/sink"
	"github.com/Veraticus/sift/internal/source"
	"github.com/Veraticus/sift/internal/storage"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// summaryValue backs -s. It shares the full-stats switch with -f so that
// whichever of the two comes last on the command line wins.
type summaryValue struct {
	full *bool
	set  bool
}

var _ pflag.Value = (*summaryValue)(nil)

func (s *summaryValue) String() string { return strconv.FormatBool(s.set) }

func (s *summaryValue) Type() string { return "bool" }

func (s *summaryValue) Set(val string) error {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return err
	}
	s.set = b
	if b {
		*s.full = false
	}
	return nil
}

func addFilterFlags(cmd *cobra.Command, v *viper.Viper) {
	var full bool

	cmd.Args = func(_ *cobra.Command, args []string) error {
		if len(args) == 0 {
			return common.NewUserError("nothing to do (see sift --help)", common.ErrNoInputs)
		}
		return nil
	}

	cmd.Flags().StringP("output", "o", ".", "directory for the output files")
	cmd.Flags().StringP("prefix", "p", "", "prefix for the output file names")
	cmd.Flags().BoolP("append", "a", false, "append to existing output files instead of overwriting them")
	cmd.Flags().BoolVarP(&full, "full", "f", false, "report min, max, sum and average for numbers")
	cmd.Flags().VarPF(&summaryValue{full: &full}, "summary", "s", "report counts only for numbers (default)").NoOptDefVal = "true"
	cmd.Flags().String("format", string(report.FormatText), "statistics format (text, table, json)")
	cmd.Flags().Bool("progress", false, "show a progress bar on stderr")

	_ = v.BindPFlag(config.KeyOutputDir, cmd.Flags().Lookup("output"))
	_ = v.BindPFlag(config.KeyOutputPrefix, cmd.Flags().Lookup("prefix"))
	_ = v.BindPFlag(config.KeyAppend, cmd.Flags().Lookup("append"))
	_ = v.BindPFlag(config.KeyReportFormat, cmd.Flags().Lookup("format"))
	_ = v.BindPFlag(config.KeyProgress, cmd.Flags().Lookup("progress"))

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		// -f and -s write one switch; only an explicit choice overrides config.
		if cmd.Flags().Changed("full") || cmd.Flags().Changed("summary") {
			v.Set(config.KeyFullStats, full)
		}
		return runFilter(cmd, v, args)
	}
}

func runFilter(cmd *cobra.Command, v *viper.Viper, inputs []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	renderer, err := report.New(report.Options{Format: cfg.Format, Full: cfg.Full})
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	out := sink.New(fs, sink.Options{
		Dir:    cfg.OutputDir,
		Prefix: cfg.Prefix,
		Append: cfg.Append,
	})

	var progress io.Writer
	if cfg.Progress {
		progress = cmd.ErrOrStderr()
	}

	eng := engine.NewWithConfig(
		source.NewOpener(fs),
		classification.NewDetector(),
		out,
		engine.Config{ProgressWriter: progress},
	)

	started := time.Now()
	result, runErr := eng.Run(ctx, inputs)

	// The sink logs each failed close. Output errors are contained like input
	// errors: the statistics are still reported and the exit status stays 0.
	_ = out.Close()

	if err := renderer.Render(cmd.OutOrStdout(), result.Snapshot); err != nil {
		return err
	}

	if failed := result.Failed(); len(failed) > 0 {
		msg := fmt.Sprintf("Some inputs were not fully processed (%d of %d)", len(failed), len(inputs))
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatWarning(msg))
	}

	if cfg.HistoryPath != "" {
		recordRun(ctx, cfg, inputs, result, started)
	}

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	return nil
}

// recordRun stores the run in the history database. Failures are logged;
// history never changes the outcome of a run.
func recordRun(ctx context.Context, cfg config.Config, inputs []string, result engine.Result, started time.Time) {
	// The run context may already be canceled; the record is still wanted.
	ctx = context.WithoutCancel(ctx)

	store, err := storage.Open(ctx, cfg.HistoryPath)
	if err != nil {
		common.LogError(err, "Failed to open history database", common.Fields{"path": cfg.HistoryPath})
		return
	}
	defer func() { _ = store.Close() }()

	run := &model.Run{
		StartedAt:  started,
		Duration:   time.Since(started),
		Inputs:     inputs,
		OutputDir:  cfg.OutputDir,
		Prefix:     cfg.Prefix,
		Append:     cfg.Append,
		Full:       cfg.Full,
		Classified: result.Classified(),
		Failed:     len(result.Failed()),
		Snapshot:   result.Snapshot,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		common.LogError(err, "Failed to record run", common.Fields{"path": cfg.HistoryPath})
		return
	}

	slog.Debug("Recorded run", "id", run.ID, "path", cfg.HistoryPath)
}
