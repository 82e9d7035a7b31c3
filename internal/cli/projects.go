package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/tracks"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Project list commands",
	}
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsReorderCmd(app))
	cmd.AddCommand(newProjectsAlphabetizeCmd(app))
	cmd.AddCommand(newProjectsActionizeCmd(app))
	return cmd
}

func (app *App) projects(cmd *cobra.Command, login string) (*tracks.ProjectList, error) {
	userID, err := app.userID(cmd, login)
	if err != nil {
		return nil, err
	}
	return tracks.LoadProjects(cmd.Context(), app.store, app.log, userID)
}

func stateFilter(state string) tracks.Filter {
	if state == "" {
		return nil
	}
	return tracks.ByState(state)
}

func writeProjects(cmd *cobra.Command, projects []model.Project, withNotes bool) error {
	headers := []string{"#", "Name", "State", "ID"}
	if withNotes {
		headers = append(headers, "Notes")
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		row := []string{strconv.Itoa(p.Position), p.Name, state(p.State), p.ID}
		if withNotes && p.CachedNoteCount != nil {
			row = append(row, strconv.Itoa(*p.CachedNoteCount))
		}
		rows = append(rows, row)
	}
	return writeTable(cmd.OutOrStdout(), headers, rows)
}

func newProjectsListCmd(app *App) *cobra.Command {
	var (
		stateName string
		notes     bool
	)

	cmd := &cobra.Command{
		Use:   "list <login>",
		Short: "List a user's projects in position order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.projects(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if notes {
				if err := list.CacheNoteCounts(cmd.Context()); err != nil {
					return writeErr(cmd, err)
				}
			}
			projects := list.Projects
			if stateName != "" {
				projects = list.InState(stateName)
			}
			return writeProjects(cmd, projects, notes)
		},
	}

	cmd.Flags().StringVar(&stateName, "state", "", "Only list projects in this state")
	cmd.Flags().BoolVar(&notes, "notes", false, "Include note counts")
	return cmd
}

func newProjectsReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <login> <project-id>...",
		Short: "Move the given projects to the top, in the given order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.projects(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := list.UpdatePositions(cmd.Context(), args[1:]); err != nil {
				return writeErr(cmd, err)
			}
			return writeProjects(cmd, list.Projects, false)
		},
	}
}

func newProjectsAlphabetizeCmd(app *App) *cobra.Command {
	var stateName string

	cmd := &cobra.Command{
		Use:   "alphabetize <login>",
		Short: "Sort projects by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.projects(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := list.Alphabetize(cmd.Context(), stateFilter(stateName)); err != nil {
				return writeErr(cmd, err)
			}
			return writeProjects(cmd, list.Projects, false)
		},
	}

	cmd.Flags().StringVar(&stateName, "state", "", "Only sort projects in this state")
	return cmd
}

func newProjectsActionizeCmd(app *App) *cobra.Command {
	var stateName string

	cmd := &cobra.Command{
		Use:   "actionize <login>",
		Short: "Move projects with no active todos to the top",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.projects(cmd, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			idle, err := list.Actionize(cmd.Context(), stateFilter(stateName))
			if err != nil {
				return writeErr(cmd, err)
			}
			app.log.Debug().Int("matched", len(idle)).Msg("projects actionized")
			if err := writeProjects(cmd, list.Projects, false); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d projects matched\n", len(idle))
			return err
		},
	}

	cmd.Flags().StringVar(&stateName, "state", model.ProjectStateActive, "Only consider projects in this state")
	return cmd
}
