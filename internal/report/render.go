// Package report renders a run as human-readable text for the one-shot CLI.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/agroclima/agromet-etl/internal/domain"
)

// Render writes the run report: selected stations, per-period regional
// summaries, per-station reliability, and any advisories.
func Render(w io.Writer, run domain.RunResult) error {
	fmt.Fprintf(w, "Agromet run %s\n", run.FetchedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Stations selected: %d   Observations: %d\n\n",
		len(run.Selected), len(run.Observations))

	if len(run.Observations) == 0 {
		fmt.Fprintln(w, "No observations extracted for the selected stations.")
		return nil
	}

	if err := renderRegional(w, run.ByTimestamp); err != nil {
		return err
	}
	if err := renderReliability(w, run.ByStation); err != nil {
		return err
	}
	renderAdvisories(w, run.Advisories)
	return nil
}

func renderRegional(w io.Writer, summaries []domain.TimestampSummary) error {
	fmt.Fprintln(w, "Regional summary")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tSTATIONS\tPARAMETER\tN\tMEAN\tMIN\tMAX")
	for _, summary := range summaries {
		for _, param := range sortedParams(summary.Fields) {
			stats := summary.Fields[param]
			fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%.1f\t%.1f\t%.1f\n",
				summary.Timestamp, summary.Stations, param,
				stats.Count, stats.Mean, stats.Min, stats.Max)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

func renderReliability(w io.Writer, summaries []domain.StationSummary) error {
	fmt.Fprintln(w, "Station reliability")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATION\tNAME\tROWS\tMISSING READINGS")
	for _, summary := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n",
			summary.StationID, summary.StationName, summary.Rows, summary.MissingReadings)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

func renderAdvisories(w io.Writer, advisories []domain.Advisory) {
	if len(advisories) == 0 {
		fmt.Fprintln(w, "No advisories.")
		return
	}
	fmt.Fprintln(w, "Advisories")
	for _, advisory := range advisories {
		fmt.Fprintf(w, "  [%s] %s: %s\n", advisory.Label, advisory.Timestamp, advisory.Detail)
	}
}

func sortedParams(fields map[string]domain.FieldStats) []string {
	params := make([]string, 0, len(fields))
	for param := range fields {
		params = append(params, param)
	}
	sort.Strings(params)
	return params
}
