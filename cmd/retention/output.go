package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/artpar/retention/internal/shell/retention"
)

// Output formats accepted by -format.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// writeReport prints a report in the requested format.
func writeReport(w io.Writer, report *retention.Report, format string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatTable:
		return writeTable(w, report)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeTable(w io.Writer, report *retention.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROJECT\tENVIRONMENT\tRELEASE\tVERSION\tLAST DEPLOYED")
	for _, r := range report.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ProjectName, r.EnvironmentName, r.ReleaseID, r.Version,
			r.LastDeployedAt.Format(time.RFC3339))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := report.Summary
	_, err := fmt.Fprintf(w, "\nkeep %d per environment: %d groups, %d kept, %d dropped, %d warnings\n",
		report.KeepCount, s.Groups, s.Kept, s.Dropped, s.Warnings)
	return err
}
