package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/linkex/internal/database"
	"github.com/nao1215/linkex/internal/model"
	"github.com/nao1215/linkex/internal/report"
)

// defaultHistoryLimit is the number of runs listed when --limit is not given.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs recorded with --save",
		Long: `History lists the runs recorded with --save, newest first.

With --show the links emitted by a single run are printed instead.

Examples:
  # List the 20 most recent runs
  linkex history

  # List every run as Markdown
  linkex history --limit 0 --markdown

  # Print the links of run 12, one per line
  linkex history --show 12

  # Print run 12 with its settings as JSON
  linkex history --show 12 --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")
	cmd.Flags().Int64("show", 0, "Show the run with this ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	w := newHistoryWriter(cmd.OutOrStdout(), jsonOut, markdownOut)
	dbDir := getDBDir(cmd)

	if cmd.Flags().Changed("show") {
		return showRun(cmd.Context(), dbDir, showID, w)
	}
	return listRuns(cmd.Context(), dbDir, limit, w)
}

// newHistoryWriter picks the report writer for the output flags.
func newHistoryWriter(out io.Writer, jsonOut, markdownOut bool) report.Writer {
	switch {
	case jsonOut:
		return report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOut:
		return report.NewMarkdownWriter(out)
	default:
		return report.NewSimpleWriter(out)
	}
}

// openHistory opens an existing history database. It returns nil without
// an error when no run has been saved yet.
func openHistory(dbDir string) (*database.HistoryDB, error) {
	if _, err := os.Stat(filepath.Join(dbDir, database.FileName)); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, nil
}

func listRuns(ctx context.Context, dbDir string, limit int, w report.Writer) error {
	db, err := openHistory(dbDir)
	if err != nil {
		return err
	}

	runs := []*model.Run{}
	if db != nil {
		defer db.Close()
		if runs, err = db.ListRuns(ctx, limit); err != nil {
			return err
		}
	}

	_, err = w.WriteRuns(runs)
	return err
}

func showRun(ctx context.Context, dbDir string, id int64, w report.Writer) error {
	db, err := openHistory(dbDir)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("%w: id %d", database.ErrRunNotFound, id)
	}
	defer db.Close()

	run, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}

	_, err = w.WriteRun(run)
	return err
}
