package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/linkex/internal/model"
)

// MarkdownWriter outputs runs as a Markdown document using nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteRun writes one run: its settings, counters and links.
func (w *MarkdownWriter) WriteRun(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("linkex run " + strconv.FormatInt(run.ID, 10))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + run.Source + "`"},
			{"Date", run.Timestamp.Local().Format(timeLayout)},
			{"Base", orDash(run.Base)},
			{"Mode", run.Mode},
			{"Filter", orDash(run.Filter)},
			{"Candidates", strconv.Itoa(run.Candidates)},
			{"Duplicates", strconv.Itoa(run.Duplicates)},
			{"Filtered Out", strconv.Itoa(run.FilteredOut)},
			{"Content SHA3-256", "`" + run.ContentHash + "`"},
		},
	})
	md.PlainText("")

	md.H2("Links")
	md.PlainText("")
	if len(run.Links) == 0 {
		md.Note("No links were emitted by this run.")
	} else {
		md.BulletList(run.Links...)
	}
	md.PlainText("")

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteRuns writes the history listing as a table.
func (w *MarkdownWriter) WriteRuns(runs []*model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("linkex history")
	md.PlainText("")

	if len(runs) == 0 {
		md.Note("No runs recorded.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			strconv.FormatInt(run.ID, 10),
			run.Timestamp.Local().Format(timeLayout),
			truncateString(run.Source, 60),
			orDash(run.Base),
			run.Mode,
			orDash(run.Filter),
			strconv.Itoa(len(run.Links)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Date", "Source", "Base", "Mode", "Filter", "Links"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [linkex](https://github.com/nao1215/linkex)*")
}
