package flag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"simple", "Exploit successful, flag found: flag{abc123}", "flag{abc123}"},
		{"uppercase", "got FLAG{Secret_Value} back", "FLAG{Secret_Value}"},
		{"first wins", "flag{one} then flag{two}", "flag{one}"},
		{"empty payload", "flag{} only", ""},
		{"unterminated", "flag{abc", ""},
		{"no flag", "attempting bypass...", ""},
		{"empty text", "", ""},
		{"json body", `{"message":"ok","flag":"flag{json}"}`, "flag{json}"},
		{"stops at first brace", "flag{a}b}", "flag{a}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}
