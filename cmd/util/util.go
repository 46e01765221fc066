package util

import (
	"strings"
)

const (
	// Wrap is the number of characters to wrap the cli help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters, breaking on word
// boundaries. This is used to format the help text of cli flags.
func WrapString(text string) string {
	var lines []string
	var line strings.Builder

	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > Wrap {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n")
}
