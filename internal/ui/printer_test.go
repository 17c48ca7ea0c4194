package ui

import (
	"bytes"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"

	"github.com/vuhung16au/DVAPI/internal/schema"
)

func TestPrintSummary(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	rep := schema.Report{
		Summary: schema.Summary{Total: 2, Success: 1, NotRun: 1, FlagsFound: 1, SuccessRate: 50},
		Challenges: []schema.ChallengeResult{
			{Challenge: "0xa1", Vulnerability: "Broken Object Level Authorization", Status: schema.OutcomeSuccess, Flag: "flag{x}"},
			{Challenge: "0xa2", Vulnerability: "Broken Authentication", Status: schema.OutcomeNotRun},
		},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, rep)
	out := buf.String()

	assert.Contains(t, out, "0xa1")
	assert.Contains(t, out, "flag{x}")
	assert.Contains(t, out, "SUCCESS")
	assert.Contains(t, out, "NOT RUN")
	assert.Contains(t, out, "1/2 successful (50%), 1 flags captured, 1 not run")
}
