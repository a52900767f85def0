package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"imglabel/internal/catalog"
	"imglabel/internal/log"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newLabelsCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "labels <directory>",
		Short: "List the labels of a directory and how many images each holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			global.configureLogging(false)
			out := cmd.OutOrStdout()
			cfg, err := global.loadConfig(out)
			if err != nil {
				return err
			}

			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			cat, err := catalog.BuildCatalogWithOptions(dir, catalog.Options{SkipHidden: cfg.Filter.SkipHidden})
			if err != nil {
				return err
			}
			if cat.Len() == 0 {
				fmt.Fprintln(out, "No labels: create sub-directories first")
				return nil
			}

			// Journal counts are best effort; a missing journal is not created.
			var moved map[string]int
			if path, err := cfg.JournalPath(); err == nil && cfg.Journal.Enabled {
				if _, statErr := os.Stat(path); statErr == nil {
					if store, err := openJournal(cfg); err == nil {
						moved, err = store.CountByLabel(context.Background(), dir)
						if err != nil {
							log.LogWithError(err).Warn("Cannot read journal counts")
						}
						store.Close()
					}
				}
			}

			headers := []string{"#", "Label", "Key", "Files", "Size", "Labeled"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight}
			rows := make([][]string, 0, cat.Len())
			for _, l := range cat.Labels() {
				count, size := dirUsage(filepath.Join(dir, l.Name))
				key := "-"
				if l.Shortcut.Assigned {
					key = string(l.Shortcut.Rune)
				}
				labeled := "-"
				if moved != nil {
					labeled = strconv.Itoa(moved[l.Name])
				}
				rows = append(rows, []string{
					strconv.Itoa(l.Index),
					l.DisplayName(),
					key,
					strconv.Itoa(count),
					humanize.Bytes(uint64(size)),
					labeled,
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}
}

// dirUsage counts the regular files directly inside dir and their total size.
func dirUsage(dir string) (int, int64) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.LogWithError(err).Debugf("Cannot read %s", dir)
		return 0, 0
	}
	var (
		count int
		size  int64
	)
	for _, e := range entries {
		if catalog.IsDirEntry(dir, e) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		count++
		size += info.Size()
	}
	return count, size
}
