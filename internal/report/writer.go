package report

import (
	"io"
	"unicode/utf8"

	"github.com/nao1215/linkex/internal/model"
)

// Writer renders runs to an output destination.
type Writer interface {
	// WriteRun outputs a single run.
	// Returns the number of bytes written and any error encountered.
	WriteRun(run *model.Run) (int, error)

	// WriteRuns outputs a listing of runs, as shown by the history command.
	WriteRuns(runs []*model.Run) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeLayout is the timestamp format used in human-readable output.
const timeLayout = "2006-01-02 15:04:05 MST"

// truncateString truncates a string to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// orDash returns "-" for empty strings.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
