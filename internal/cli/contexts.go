package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/tracks"
)

func newContextsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contexts",
		Short: "Context list commands",
	}
	cmd.AddCommand(newContextsListCmd(app))
	cmd.AddCommand(newContextsReorderCmd(app))
	cmd.AddCommand(newContextsAlphabetizeCmd(app))
	return cmd
}

func (app *App) contexts(cmd *cobra.Command, login string) (*tracks.ContextList, error) {
	userID, err := app.userID(cmd, login)
	if err != nil {
		return nil, err
	}
	return tracks.LoadContexts(cmd.Context(), app.store, app.log, userID)
}

func writeContexts(cmd *cobra.Command, contexts []model.Context) error {
	rows := make([][]string, 0, len(contexts))
	for _, c := range contexts {
		rows = append(rows, []string{strconv.Itoa(c.Position), c.Name, state(c.State), c.ID})
	}
	return writeTable(cmd.OutOrStdout(), []string{"#", "Name", "State", "ID"}, rows)
}

func newContextsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <login>",
		Short: "List a user's contexts in position order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.contexts(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeContexts(cmd, list.Contexts)
		},
	}
}

func newContextsReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <login> <context-id>...",
		Short: "Move the given contexts to the top, in the given order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.contexts(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := list.UpdatePositions(cmd.Context(), args[1:]); err != nil {
				return writeErr(cmd, err)
			}
			return writeContexts(cmd, list.Contexts)
		},
	}
}

func newContextsAlphabetizeCmd(app *App) *cobra.Command {
	var stateName string

	cmd := &cobra.Command{
		Use:   "alphabetize <login>",
		Short: "Sort contexts by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.contexts(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := list.Alphabetize(cmd.Context(), stateFilter(stateName)); err != nil {
				return writeErr(cmd, err)
			}
			return writeContexts(cmd, list.Contexts)
		},
	}

	cmd.Flags().StringVar(&stateName, "state", "", "Only sort contexts in this state")
	return cmd
}
