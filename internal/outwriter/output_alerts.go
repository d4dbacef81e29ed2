package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/cohortpulse/cohortpulse/internal/contract"
	"github.com/cohortpulse/cohortpulse/schema"
)

// PrintAlerts outputs evaluated alerts, dispatching on the output format.
func PrintAlerts(alerts []schema.Alert, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, alerts)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAlertsCSV(w, alerts)
		}, "CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAlertsTable(w, alerts, cfg)
		}, "table")
	}
}

func writeAlertsCSV(w io.Writer, alerts []schema.Alert) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(schema.AlertsHeaders); err != nil {
		return err
	}
	for _, alert := range alerts {
		record := []string{
			alert.Username, alert.Type, alert.Details, alert.LastActive,
			fmt.Sprintf("%.1f", alert.Score),
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeAlertsTable(w io.Writer, alerts []schema.Alert, cfg *contract.Config) error {
	if len(alerts) == 0 {
		_, err := fmt.Fprintln(w, "No alerts. Everyone is on track.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header(schema.AlertsHeaders)

	var data [][]string
	for _, alert := range alerts {
		alertType := alert.Type
		if cfg.UseColors {
			alertType = colorAlertType(alert.Type)
		}
		data = append(data, []string{
			alert.Username, alertType, alert.Details, alert.LastActive,
			fmt.Sprintf("%.1f", alert.Score),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d alerts across %d learners\n", len(alerts), countDistinctUsers(alerts))
	return err
}

func colorAlertType(alertType string) string {
	switch alertType {
	case schema.AlertInactive:
		return color.New(color.FgRed, color.Bold).Sprint(alertType)
	case schema.AlertAtRisk:
		return color.New(color.FgMagenta).Sprint(alertType)
	default:
		return color.New(color.FgYellow).Sprint(alertType)
	}
}

func countDistinctUsers(alerts []schema.Alert) int {
	seen := make(map[string]bool, len(alerts))
	for _, alert := range alerts {
		seen[alert.Username] = true
	}
	return len(seen)
}
