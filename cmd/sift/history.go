package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/report"
	"github.com/Veraticus/sift/internal/stats"
	"github.com/Veraticus/sift/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func historyCmd(v *viper.Viper) *cobra.Command {
	var (
		limit    int
		totals   bool
		clearAll bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long: `List runs recorded in the history database, newest first.

Runs are only recorded when a history database is configured with --history-db,
the history.path config key or SIFT_HISTORY_PATH.`,
		Example: `  # Show the last 10 runs
  sift history --history-db ~/.local/share/sift/history.db --limit 10

  # Combined statistics of every recorded run
  sift history --totals --format table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			path := config.ExpandPath(v.GetString(config.KeyHistoryPath))
			if path == "" {
				return common.NewUserError("no history database configured (use --history-db)", common.ErrInvalidConfig)
			}

			store, err := storage.Open(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to open history database: %w", err)
			}
			defer func() { _ = store.Close() }()

			if clearAll {
				n, err := store.ClearRuns(ctx)
				if err != nil {
					return err
				}
				common.LogInfo("Cleared run history", common.Fields{"runs": n, "path": store.Path()})
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %d runs", n)))
				return err
			}

			runs, err := store.ListRuns(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if totals {
				renderer, err := report.New(report.Options{Format: report.Format(format), Full: true})
				if err != nil {
					return err
				}
				return renderer.Render(cmd.OutOrStdout(), mergeRuns(runs))
			}

			return printRuns(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&totals, "totals", false, "print combined statistics of the listed runs")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete every recorded run")
	cmd.Flags().StringVar(&format, "format", string(report.FormatText), "format for --totals (text, table, json)")

	return cmd
}

// mergeRuns combines the statistics of every run into one snapshot.
func mergeRuns(runs []model.Run) model.Snapshot {
	agg := stats.NewAggregator()
	for _, run := range runs {
		agg.Merge(run.Snapshot)
	}
	return agg.Snapshot()
}

func printRuns(w io.Writer, runs []model.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, cli.SubtitleStyle.Render("No runs recorded."))
		return err
	}

	if _, err := fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("Recorded runs (%d)", len(runs)))); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Header
	fmt.Fprintln(tw, strings.Join([]string{
		cli.TableHeaderStyle.Render("ID"),
		cli.TableHeaderStyle.Render("STARTED"),
		cli.TableHeaderStyle.Render("INPUTS"),
		cli.TableHeaderStyle.Render("FAILED"),
		cli.TableHeaderStyle.Render("INTEGERS"),
		cli.TableHeaderStyle.Render("FLOATS"),
		cli.TableHeaderStyle.Render("STRINGS"),
		cli.TableHeaderStyle.Render("OUTPUT"),
	}, "\t"))

	// Rows
	for _, run := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			len(run.Inputs),
			run.Failed,
			countOf(run.Snapshot, model.CategoryInteger),
			countOf(run.Snapshot, model.CategoryFloat),
			countOf(run.Snapshot, model.CategoryString),
			outputPattern(run),
		)
	}

	return tw.Flush()
}

func countOf(snap model.Snapshot, c model.Category) int64 {
	if c == model.CategoryString {
		if snap.Strings == nil {
			return 0
		}
		return snap.Strings.Count
	}
	rec, _ := snap.Numeric(c)
	return rec.Count
}

func outputPattern(run model.Run) string {
	mode := "truncate"
	if run.Append {
		mode = "append"
	}
	return fmt.Sprintf("%s/%s*.txt (%s)", run.OutputDir, run.Prefix, mode)
}
