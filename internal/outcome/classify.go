// Package outcome derives per-challenge results from the artifacts in a
// logs directory.
package outcome

import (
	"strings"

	"github.com/vuhung16au/DVAPI/internal/exploitlog"
	"github.com/vuhung16au/DVAPI/internal/schema"
)

const (
	notesLines = 3
	notesLimit = 100
	ellipsis   = "..."
)

// Classify maps the text of an existing log to an outcome. Rules are
// checked in order and the first match wins:
//
//	"flag found"                        -> success
//	success glyph and "successful"      -> success
//	failure glyph or "failed"           -> failed
//	anything else                       -> partial
//
// A log that says "failed" and later "flag found" is therefore a success.
func Classify(logText string) schema.Outcome {
	content := strings.ToLower(logText)
	switch {
	case strings.Contains(content, "flag found"):
		return schema.OutcomeSuccess
	case strings.Contains(content, exploitlog.SuccessGlyph) && strings.Contains(content, "successful"):
		return schema.OutcomeSuccess
	case strings.Contains(content, exploitlog.FailureGlyph) || strings.Contains(content, "failed"):
		return schema.OutcomeFailed
	default:
		return schema.OutcomePartial
	}
}

// Notes returns the last three newline-separated segments of the log
// joined with "; ". A trailing newline counts as an empty last segment.
// Results longer than 100 runes are cut to 100 runes plus "...".
func Notes(logText string) string {
	if logText == "" {
		return ""
	}
	lines := strings.Split(logText, "\n")
	if len(lines) > notesLines {
		lines = lines[len(lines)-notesLines:]
	}
	joined := strings.Join(lines, "; ")

	// Counted in runes. Characters outside the BMP count once here, where a
	// UTF-16 count would give two.
	rs := []rune(joined)
	if len(rs) > notesLimit {
		return string(rs[:notesLimit]) + ellipsis
	}
	return joined
}
