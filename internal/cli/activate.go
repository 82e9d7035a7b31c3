package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/tracks/internal/tracks"
)

func newActivateCmd(app *App) *cobra.Command {
	var login string

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Activate deferred todos whose show-from date has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.openStore()
			if err != nil {
				return writeErr(cmd, err)
			}
			sweeper := tracks.NewDeferredTodos(s, app.log)
			now := time.Now()

			if login == "" {
				n, err := sweeper.ActivateAll(cmd.Context(), now)
				if err != nil {
					return writeErr(cmd, err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "activated %d todos\n", n)
				return err
			}

			userID, err := app.userID(cmd, login)
			if err != nil {
				return writeErr(cmd, err)
			}
			activated, err := sweeper.FindAndActivateReady(cmd.Context(), userID, now)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, t := range activated {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", t.ID, t.Description)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "activated %d todos\n", len(activated))
			return err
		},
	}

	cmd.Flags().StringVar(&login, "user", "", "Only sweep this user's todos")
	return cmd
}
