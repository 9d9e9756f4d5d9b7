// Package report renders extraction results and run history.
//
// SimpleWriter prints plain text: the links of a run one per line, and a
// column-aligned table for history listings. MarkdownWriter renders the
// same data as a Markdown document, and JSONWriter emits it as JSON for
// scripting.
//
// All writers implement the Writer interface so the history command can
// pick one by flag.
package report
