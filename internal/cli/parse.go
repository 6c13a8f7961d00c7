package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/cadence/internal/attr"
)

var (
	parseFrequency string
	parsePriority  string
	parseTime      string
	parseDue       string
	parseNow       string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Show how free-text attributes are interpreted",
	Example: `  cadence parse --frequency "3x week" --priority urgent --time "1h 30m" --due "next friday"`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFrequency, "frequency", "f", "", "Frequency text")
	parseCmd.Flags().StringVarP(&parsePriority, "priority", "p", "", "Priority text")
	parseCmd.Flags().StringVar(&parseTime, "time", "", "Required time text")
	parseCmd.Flags().StringVarP(&parseDue, "due", "d", "", "Due date text")
	parseCmd.Flags().StringVar(&parseNow, "now", "", "Anchor for relative dates (RFC 3339, default now)")
}

func runParse(cmd *cobra.Command, args []string) error {
	now := time.Now()
	if parseNow != "" {
		t, err := time.Parse(time.RFC3339, parseNow)
		if err != nil {
			return fmt.Errorf("--now: %w", err)
		}
		now = t
	}

	a, outcome := attr.Parse(attr.Input{
		Frequency:    parseFrequency,
		Priority:     parsePriority,
		RequiredTime: parseTime,
		Due:          parseDue,
	}, now)

	due := "none"
	if a.DueDate != nil {
		due = a.DueDate.Format("2006-01-02 (Mon)")
	}

	out := cmd.OutOrStdout()
	rows := []struct {
		field string
		value string
	}{
		{attr.FieldFrequency, fmt.Sprintf("score %.0f, %.2f/week", a.FrequencyScore, a.TimesPerWeek)},
		{attr.FieldPriority, fmt.Sprintf("%d", a.PriorityScore)},
		{attr.FieldTimeRequired, fmt.Sprintf("%d min", a.TimeRequiredMinutes)},
		{attr.FieldDue, due},
	}
	for _, r := range rows {
		note := ""
		switch o := outcome[r.field]; {
		case o.Failed():
			note = " (unrecognized, default)"
		case o.Empty:
			note = " (default)"
		}
		fmt.Fprintf(out, "%-14s %s%s\n", r.field+":", r.value, note)
	}
	return nil
}
