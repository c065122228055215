package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"physiobids/internal/session"
)

// renderReport formats the conversion summary shown on stdout after a run.
func renderReport(w io.Writer, report *session.Report) string {
	colorize := shouldColorize(w)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s)\n", report.Identity.Subject, report.Identity.Session, report.CorrelationID)

	rows := make([][]string, 0, len(report.Runs))
	for _, run := range report.Runs {
		volumes := ""
		samples := ""
		if run.Outcome == session.OutcomeConverted {
			volumes = fmt.Sprintf("%d", run.Segment.NumVolumes)
			samples = fmt.Sprintf("%d", run.Segment.EndIndex-run.Segment.StartIndex)
		}
		rows = append(rows, []string{
			run.RunID,
			outcomeLabel(run.Outcome, colorize),
			volumes,
			samples,
			run.Message,
		})
	}
	if len(rows) > 0 {
		b.WriteString(renderTable(
			[]string{"Run", "Outcome", "Volumes", "Samples", "Detail"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Converted %d run(s), skipped %d\n", report.Converted(), report.Skipped())
	if report.Aborted {
		fmt.Fprintf(&b, "Aborted: %s\n", report.AbortReason)
	}
	if report.PlotPath != "" {
		fmt.Fprintf(&b, "QA plot: %s\n", report.PlotPath)
	}
	if report.MirroredTo != "" {
		fmt.Fprintf(&b, "Sourcedata: %s\n", report.MirroredTo)
	}
	return strings.TrimRight(b.String(), "\n")
}

func outcomeLabel(outcome session.RunOutcome, colorize bool) string {
	label := string(outcome)
	if !colorize {
		return label
	}
	switch outcome {
	case session.OutcomeConverted:
		return text.FgGreen.Sprint(label)
	case session.OutcomeSkipped:
		return text.FgYellow.Sprint(label)
	case session.OutcomeAborted:
		return text.FgRed.Sprint(label)
	default:
		return label
	}
}
