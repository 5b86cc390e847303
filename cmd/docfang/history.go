package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ramkansal/docfang/internal/store"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show archived crawl runs",
		Long: `List the crawl runs archived with --archive or --db, newest first.
With a run ID, list the pages extracted by that run.

Examples:
  docfang history
  docfang history --limit 5
  docfang history 12 --db ./docs.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list (0 for all)")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	noColor, _ := cmd.Flags().GetBool("no-color")
	limit, _ := cmd.Flags().GetInt("limit")

	path, err := historyPath(cmd)
	if err != nil {
		return err
	}

	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	out := cmd.OutOrStdout()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid run ID %q", args[0])
		}
		pages, err := db.Pages(cmd.Context(), id)
		if err != nil {
			return err
		}
		for i, p := range pages {
			fmt.Fprintf(out, "  %3d. %s\n       %s\n", i+1, clr(!noColor, "cyan", p.Title), p.URL)
		}
		if len(pages) == 0 {
			fmt.Fprintf(out, "  Run #%d has no pages.\n", id)
		}
		return nil
	}

	runs, err := db.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(out, "  No archived runs in %s\n", path)
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "  %s  %-12s %4d pages  %s  %s\n",
			clr(!noColor, "cyan", fmt.Sprintf("#%-4d", r.ID)),
			r.Platform,
			r.TotalPages,
			clr(!noColor, "dim", r.CreatedAt.Local().Format("2006-01-02 15:04:05")),
			r.BaseURL,
		)
	}
	return nil
}

// historyPath resolves the archive to read: --db, then the config file,
// then the default XDG location.
func historyPath(cmd *cobra.Command) (string, error) {
	file, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		return db, nil
	}
	if file.Output.DB != "" {
		return file.Output.DB, nil
	}
	return store.DefaultPath()
}
