package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/tracks/internal/model"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	cmd.AddCommand(newConfigInitCmd(app))
	cmd.AddCommand(newConfigShowCmd(app))
	return cmd
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(app.ConfigPath); err == nil && !force {
				return writeErr(cmd, fmt.Errorf("config %s already exists (use --force to overwrite)", app.ConfigPath))
			}
			cfg := model.DefaultAppConfig()
			if app.DBPath != "" {
				cfg.Database.Path = app.DBPath
			}
			if err := model.SaveConfig(app.ConfigPath, cfg); err != nil {
				return writeErr(cmd, err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", app.ConfigPath)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			return writeTable(cmd.OutOrStdout(), []string{"Key", "Value"}, [][]string{
				{"database.path", cfg.Database.Path},
				{"auth.schemes", fmt.Sprint(cfg.Auth.Schemes)},
				{"auth.preferred", cfg.PreferredAuth()},
				{"pagination.per_page", fmt.Sprint(cfg.Pagination.PerPage)},
				{"log.level", cfg.Log.Level},
				{"log.format", cfg.Log.Format},
			})
		},
	}
}
