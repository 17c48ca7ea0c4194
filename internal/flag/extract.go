package flag

import "regexp"

var flagPattern = regexp.MustCompile(`(?i)flag\{[^}]+\}`)

// Extract returns the first flag{...} in text, or "" when there is none.
// The match is case-insensitive and keeps the original casing.
func Extract(text string) string {
	return flagPattern.FindString(text)
}
