package main

import (
	"fmt"
	"os"

	"imglabel/internal/config"
	"imglabel/internal/errors"

	"github.com/spf13/cobra"
)

func newConfigCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create the config file or list its themes",
	}
	cmd.AddCommand(newConfigInitCommand(global))
	cmd.AddCommand(newConfigThemesCommand())
	return cmd
}

func newConfigInitCommand(global *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file holding the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := global.configPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return errors.Wrap(err, "locate config file")
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf("%s already exists; use --force to replace it", path)
			}
			if err := config.SaveConfig(config.New(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}

func newConfigThemesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the colour themes accepted by display.theme",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			headers := []string{"Theme", "Primary", "Success", "Warning", "Error"}
			var rows [][]string
			for _, name := range config.ListThemes() {
				theme := config.GetTheme(name)
				rows = append(rows, []string{name, theme["primary"], theme["success"], theme["warning"], theme["error"]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, nil))
		},
	}
}
