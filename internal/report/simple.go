package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/linkex/internal/model"
)

// SimpleWriter outputs plain text.
//
// WriteRun prints only the links, one per line, so its output can be piped
// into other tools. WriteRuns prints an aligned table for the terminal.
type SimpleWriter struct {
	baseWriter

	// sourceWidth is the maximum width of the SOURCE column.
	sourceWidth int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithSourceWidth limits the SOURCE column of history tables. Longer
// sources are truncated with an ellipsis. Values below 4 are ignored.
func WithSourceWidth(width int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		if width >= 4 {
			w.sourceWidth = width
		}
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:  newBaseWriter(output),
		sourceWidth: 60,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteRun writes the links of run, one per line. A run without links
// produces no output.
func (w *SimpleWriter) WriteRun(run *model.Run) (int, error) {
	var sb strings.Builder
	for _, link := range run.Links {
		sb.WriteString(link)
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return 0, nil
	}
	return io.WriteString(w.output, sb.String())
}

// WriteRuns writes a history table.
func (w *SimpleWriter) WriteRuns(runs []*model.Run) (int, error) {
	var sb strings.Builder

	if len(runs) == 0 {
		sb.WriteString("No runs recorded.\n")
		return io.WriteString(w.output, sb.String())
	}

	fmt.Fprintf(&sb, "%-6s  %-23s  %-4s  %5s  %5s  %s\n", "ID", "DATE", "MODE", "LINKS", "DUPS", "SOURCE")
	sb.WriteString(strings.Repeat("-", 54+w.sourceWidth))
	sb.WriteString("\n")

	for _, run := range runs {
		fmt.Fprintf(&sb, "%-6d  %-23s  %-4s  %5d  %5d  %s\n",
			run.ID,
			run.Timestamp.Local().Format(timeLayout),
			run.Mode,
			len(run.Links),
			run.Duplicates,
			truncateString(run.Source, w.sourceWidth),
		)
	}

	return io.WriteString(w.output, sb.String())
}
