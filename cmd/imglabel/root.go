package main

import (
	"fmt"
	"io"
	"os"

	"imglabel/internal/config"
	"imglabel/internal/errors"
	"imglabel/internal/log"

	"github.com/spf13/cobra"
)

// globalOptions holds the flags shared by every command.
type globalOptions struct {
	configPath string
	debug      bool
	jsonLogs   bool
	logFile    string
}

// loadConfig reads the --config file, or the default one. An unreadable
// file falls back to defaults; a malformed one is an error.
func (g *globalOptions) loadConfig(out io.Writer) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.LoadConfigFile(g.configPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		if errors.IsInvalidConfig(err) {
			return nil, err
		}
		fmt.Fprintf(out, "Warning: could not load config: %v. Using default settings.\n", err)
		cfg = config.New()
	}
	return cfg, nil
}

// configureLogging points the package logger at stderr, or only at the log
// file when quiet is set because a terminal UI owns the screen.
func (g *globalOptions) configureLogging(quiet bool) {
	opts := []log.Option{log.WithOutput(os.Stderr)}
	if quiet {
		opts[0] = log.WithOutput(io.Discard)
	}
	if g.logFile != "" {
		opts = append(opts, log.WithFile(g.logFile))
	}
	if g.jsonLogs {
		opts = append(opts, log.WithJSON())
	}
	log.Configure(opts...)
	log.SetDebug(g.debug)
}

func newRootCommand() *cobra.Command {
	global := &globalOptions{}
	label := &labelOptions{}

	rootCmd := &cobra.Command{
		Use:   "imglabel <directory>",
		Short: "Sort images into label folders one keystroke at a time",
		Long: `imglabel shows every image in a directory, one at a time, and moves it
into the sub-directory you pick. Each sub-directory is a label; press the
bracketed letter of a label, or click its button, to file the image there.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			label.dryRunSet = cmd.Flags().Changed("dry-run")
			return runLabel(cmd, args[0], global, label)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&label.tui, "tui", false, "Use the terminal front-end instead of a window")
	flags.BoolVar(&label.dryRun, "dry-run", false, "Report moves without touching the disk")
	flags.StringArrayVar(&label.include, "include", nil, "Only queue files matching this glob (repeatable)")
	flags.BoolVar(&label.noJournal, "no-journal", false, "Do not record moves in the journal")

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&global.configPath, "config", "c", "", "config file (default is $HOME/.config/imglabel/config.yaml)")
	persistent.BoolVar(&global.debug, "debug", false, "Enable debug logging")
	persistent.BoolVar(&global.jsonLogs, "json-logs", false, "Write logs as JSON")
	persistent.StringVar(&global.logFile, "log-file", "", "Also append logs to this file")

	rootCmd.AddCommand(newLabelsCommand(global))
	rootCmd.AddCommand(newHistoryCommand(global))
	rootCmd.AddCommand(newConfigCommand(global))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "imglabel version %s\n", version)
		},
	}
}
