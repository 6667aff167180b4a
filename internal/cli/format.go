package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fpang/brainrot-studio/internal/arena"
	"github.com/fpang/brainrot-studio/internal/pipeline"
)

// FormatDurationShort formats a duration in a short format (M:SS or H:MM:SS).
func FormatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// outcomeStatus is the one-word status of an idea in the report table.
func outcomeStatus(o pipeline.Outcome) string {
	switch {
	case o.Result != nil:
		return "ok"
	case o.Abandoned:
		return "abandoned"
	default:
		return "failed"
	}
}

// PrintReport writes one row per processed idea and a totals line.
func PrintReport(w io.Writer, report pipeline.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tIDEA\tSTATUS\tTIME\tVIDEO")

	var ok int
	for _, o := range report.Outcomes {
		video := ""
		if o.Result != nil {
			ok++
			video = o.Result.VideoPath
			if o.Result.VideoURL != "" {
				video = o.Result.VideoURL
			}
		} else if o.Err != nil {
			video = o.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			o.Idea.SourceModel, o.Idea.Name, outcomeStatus(o), FormatDurationShort(o.Duration), video)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nRun %s: %d/%d videos produced", report.RunID, ok, len(report.Outcomes))
	if report.SummaryErr != nil {
		fmt.Fprintf(w, ", summary NOT updated: %v\n", report.SummaryErr)
		return
	}
	fmt.Fprintf(w, ", summary has %d entries\n", report.SummaryTotal)
}

// PrintLeaderboard writes the arena standings, best first.
func PrintLeaderboard(w io.Writer, board []arena.Contestant) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMODEL\tRATING\tRANK\tW-L-T\tWIN%\tVOTES")
	for i, c := range board {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d-%d-%d\t%.1f\t%d\n",
			i+1, c.Model, c.Rating, c.Rank(), c.Wins, c.Losses, c.Ties, c.WinRate(), c.TotalVotes)
	}
	tw.Flush()
}
