package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogLine checks that a single line of log output contains msg and
// every attribute fragment in attrs (for example "region=dept-a"). Matching
// on one line keeps attributes of unrelated records from satisfying the check.
func AssertLogLine(t *testing.T, logOutput, msg string, attrs ...string) {
	t.Helper()
	require.NotEmpty(t, FindLogLines(logOutput, msg, attrs...),
		"expected a log line with %q and %v, got:\n%s", msg, attrs, logOutput)
}

// FindLogLines returns every line of log output that contains msg and all of
// attrs.
func FindLogLines(logOutput, msg string, attrs ...string) []string {
	var out []string
	for _, line := range strings.Split(logOutput, "\n") {
		if !strings.Contains(line, msg) {
			continue
		}
		matched := true
		for _, a := range attrs {
			if !strings.Contains(line, a) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, line)
		}
	}
	return out
}
