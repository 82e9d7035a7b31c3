// Package cli implements the tracks maintenance command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nhle/tracks/internal/logging"
	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/store"
	"github.com/nhle/tracks/internal/theme"
)

// App holds what every command shares: flags, configuration, the logger
// and the lazily opened store.
type App struct {
	ConfigPath string
	DBPath     string
	LogLevel   string

	cfg   *model.AppConfig
	log   zerolog.Logger
	store *store.SQLiteStore
}

// NewRootCmd builds the tracks command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tracks",
		Short:        "Administer a tracks GTD database",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Create the first (admin) user
  tracks users signup --login admin --password secret --confirm secret

  # Sort a user's active projects by name
  tracks projects alphabetize admin --state active

  # Activate every deferred todo whose show-from date has passed
  tracks activate
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TRACKS_CONFIG", model.DefaultConfigPath()), "Path to config file")
	cmd.PersistentFlags().StringVar(&app.DBPath, "db", "", "Path to database file (overrides database.path)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (overrides log.level)")

	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newContextsCmd(app))
	cmd.AddCommand(newActivateCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	closeAfterRun(cmd, app)
	return cmd
}

// closeAfterRun wraps every runnable command so the store is closed whether
// or not the command succeeds.
func closeAfterRun(cmd *cobra.Command, app *App) {
	for _, sub := range cmd.Commands() {
		closeAfterRun(sub, app)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if cerr := app.close(); err == nil {
				err = cerr
			}
		}()
		return run(cmd, args)
	}
}

func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := model.LoadConfig(app.ConfigPath)
	if err != nil {
		return err
	}
	if app.DBPath != "" {
		cfg.Database.Path = app.DBPath
	}
	if app.LogLevel != "" {
		cfg.Log.Level = app.LogLevel
	}
	app.cfg = cfg

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	app.log = logger
	log.Logger = logger
	return nil
}

// openStore opens the configured database on first use.
func (app *App) openStore() (*store.SQLiteStore, error) {
	if app.store != nil {
		return app.store, nil
	}
	path := app.cfg.Database.Path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	app.log.Debug().Str("path", path).Msg("database opened")
	app.store = s
	return s, nil
}

func (app *App) close() error {
	if app.store == nil {
		return nil
	}
	err := app.store.Close()
	app.store = nil
	return err
}

// userID resolves a login argument.
func (app *App) userID(cmd *cobra.Command, login string) (string, error) {
	s, err := app.openStore()
	if err != nil {
		return "", err
	}
	u, err := s.GetUserByLogin(cmd.Context(), login)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// writeErr prints err, listing each message of a validation failure on
// its own line, and returns it for cobra.
func writeErr(cmd *cobra.Command, err error) error {
	var v model.ValidationErrors
	if errors.As(err, &v) {
		for _, msg := range v.FullMessages() {
			fmt.Fprintln(cmd.ErrOrStderr(), theme.ErrorStyle.Render(msg))
		}
		return err
	}
	fmt.Fprintln(cmd.ErrOrStderr(), theme.ErrorStyle.Render(err.Error()))
	return err
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
