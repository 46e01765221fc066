package util

import (
	"strings"
	"testing"
)

func TestWrapString(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "empty",
			text: "",
			want: "",
		},
		{
			name: "short line untouched",
			text: "The address on which the HTTP API listens",
			want: "The address on which the HTTP API listens",
		},
		{
			name: "wraps at word boundaries",
			text: "How long an unread refresh waits for fresh data before answering with the cached snapshot",
			want: "How long an unread refresh waits for fresh data\nbefore answering with the cached snapshot",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := WrapString(tc.text)
			if got != tc.want {
				t.Errorf("wrapped text mismatch:\ngot:  %q\nwant: %q", got, tc.want)
			}

			// Only a single overlong word may exceed the wrap width.
			for _, line := range strings.Split(got, "\n") {
				if len(line) > Wrap && strings.Contains(line, " ") {
					t.Errorf("line exceeds wrap width: %q", line)
				}
			}
		})
	}
}
