package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/model"
)

type tableRenderer struct {
	full bool
}

func (r tableRenderer) Render(w io.Writer, snap model.Snapshot) error {
	if snap.Empty() {
		if _, err := fmt.Fprintln(w, cli.SubtitleStyle.Render("No lines classified.")); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return nil
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	header := []string{"CATEGORY", "COUNT", "MIN LEN", "MAX LEN"}
	if r.full {
		header = append(header, "MIN", "MAX", "SUM", "AVG")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, c := range snap.Observed() {
		row := r.row(snap, c)
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to format report table: %w", err)
	}

	// Style the header after alignment; escape codes would skew tabwriter.
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	lines[0] = cli.TableHeaderStyle.Render(lines[0])

	box := cli.RenderBox(cli.ChartIcon+" Statistics", strings.Join(lines, "\n"))
	if _, err := fmt.Fprintln(w, box); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (r tableRenderer) row(snap model.Snapshot, c model.Category) []string {
	const none = "-"

	if c == model.CategoryString {
		s := snap.Strings
		row := []string{c.Key(), fmt.Sprint(s.Count), fmt.Sprint(s.MinLength), fmt.Sprint(s.MaxLength)}
		if r.full {
			row = append(row, none, none, none, none)
		}
		return row
	}

	rec, _ := snap.Numeric(c)
	row := []string{c.Key(), fmt.Sprint(rec.Count), none, none}
	if r.full {
		row = append(row,
			FormatNumber(rec.Min),
			FormatNumber(rec.Max),
			FormatNumber(rec.Sum),
			FormatNumber(rec.Average()),
		)
	}
	return row
}
