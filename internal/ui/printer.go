package ui

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"github.com/vuhung16au/DVAPI/internal/schema"
)

// PrintSummary renders the per-challenge table and the aggregate line.
func PrintSummary(w io.Writer, rep schema.Report) {
	data := [][]string{
		{"Challenge", "Vulnerability", "Status", "Flag"},
	}

	for _, c := range rep.Challenges {
		flag := "-"
		if c.Flag != "" {
			flag = pterm.FgCyan.Sprint(c.Flag)
		}
		data = append(data, []string{
			c.Challenge,
			c.Vulnerability,
			StatusText(c.Status),
			flag,
		})
	}

	_ = pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render()

	s := rep.Summary
	line := fmt.Sprintf("%d/%d successful (%d%%), %d flags captured, %d not run",
		s.Success, s.Total, s.SuccessRate, s.FlagsFound, s.NotRun)
	if s.Success > 0 {
		pterm.Success.WithWriter(w).Println(line)
	} else {
		pterm.Warning.WithWriter(w).Println(line)
	}
}

// StatusText colours an outcome for the terminal.
func StatusText(o schema.Outcome) string {
	switch o {
	case schema.OutcomeSuccess:
		return pterm.FgGreen.Sprint("SUCCESS")
	case schema.OutcomeFailed:
		return pterm.FgRed.Sprint("FAILED")
	case schema.OutcomePartial:
		return pterm.FgYellow.Sprint("PARTIAL")
	default:
		return pterm.FgGray.Sprint("NOT RUN")
	}
}
