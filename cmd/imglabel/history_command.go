package main

import (
	"fmt"
	"os"
	"path/filepath"

	"imglabel/internal/journal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCommand(global *globalOptions) *cobra.Command {
	var (
		limit int
		dir   string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently labeled images from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			global.configureLogging(false)
			out := cmd.OutOrStdout()
			cfg, err := global.loadConfig(out)
			if err != nil {
				return err
			}

			path, err := cfg.JournalPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "No moves recorded yet")
				return nil
			}

			q := journal.Query{Limit: limit}
			if dir != "" {
				if q.Directory, err = filepath.Abs(dir); err != nil {
					return err
				}
			}

			store, err := openJournal(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No moves recorded yet")
				return nil
			}

			headers := []string{"When", "Directory", "File", "Label", "Mode"}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				mode := "moved"
				if e.DryRun {
					mode = "dry run"
				}
				rows = append(rows, []string{
					humanize.Time(e.MovedAt),
					e.Directory,
					e.Filename,
					e.Label,
					mode,
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, nil))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of moves to show (0 for all)")
	cmd.Flags().StringVar(&dir, "dir", "", "Only show moves out of this directory")
	return cmd
}
