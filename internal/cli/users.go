package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/tracks/internal/model"
	"github.com/nhle/tracks/internal/theme"
	"github.com/nhle/tracks/internal/tracks"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User commands",
	}
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersShowCmd(app))
	cmd.AddCommand(newUsersSignupCmd(app))
	cmd.AddCommand(newUsersPasswdCmd(app))
	cmd.AddCommand(newUsersAuthTypeCmd(app))
	cmd.AddCommand(newUsersTokenCmd(app))
	cmd.AddCommand(newUsersDestroyCmd(app))
	return cmd
}

func (app *App) users() (*tracks.Users, error) {
	s, err := app.openStore()
	if err != nil {
		return nil, err
	}
	return tracks.NewUsers(s, app.cfg, app.log), nil
}

func newUsersListCmd(app *App) *cobra.Command {
	var (
		page  int
		asXML bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users ordered by login, one page at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.users()
			if err != nil {
				return writeErr(cmd, err)
			}
			list, err := users.List(cmd.Context(), page)
			if err != nil {
				return writeErr(cmd, err)
			}
			if asXML {
				return writeXML(cmd.OutOrStdout(), model.NewUsersXML(list))
			}

			rows := make([][]string, 0, len(list))
			for _, u := range list {
				rows = append(rows, []string{
					u.Login, u.DisplayName(), u.AuthType,
					strconv.FormatBool(u.IsAdmin), u.CreatedAt.Format(time.DateOnly),
				})
			}
			if err := writeTable(cmd.OutOrStdout(), []string{"Login", "Name", "Auth", "Admin", "Created"}, rows); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), theme.HelpStyle.Render(fmt.Sprintf("page %d", page)))
			return err
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().BoolVar(&asXML, "xml", false, "Write XML instead of a table")
	return cmd
}

func newUsersShowCmd(app *App) *cobra.Command {
	var asXML bool

	cmd := &cobra.Command{
		Use:   "show <login>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.users()
			if err != nil {
				return writeErr(cmd, err)
			}
			u, err := users.Get(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if asXML {
				return writeXML(cmd.OutOrStdout(), u)
			}
			return writeTable(cmd.OutOrStdout(), []string{"Field", "Value"}, [][]string{
				{"Login", u.Login},
				{"Name", u.DisplayName()},
				{"Auth type", u.AuthType},
				{"Admin", strconv.FormatBool(u.IsAdmin)},
				{"Token", u.Token},
				{"Created", u.CreatedAt.Format(time.RFC3339)},
			})
		},
	}

	cmd.Flags().BoolVar(&asXML, "xml", false, "Write XML instead of a table")
	return cmd
}

func newUsersSignupCmd(app *App) *cobra.Command {
	var p tracks.SignupParams

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a user (the first user becomes admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.users()
			if err != nil {
				return writeErr(cmd, err)
			}
			if p.Password == "" && p.PasswordConfirmation == "" {
				if err := promptPassword(&p.Password, &p.PasswordConfirmation); err != nil {
					return writeErr(cmd, err)
				}
			}
			u, err := users.Signup(cmd.Context(), p)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %s (admin: %t)\n", u.Login, u.IsAdmin)
			return err
		},
	}

	cmd.Flags().StringVar(&p.Login, "login", "", "Login")
	cmd.Flags().StringVar(&p.Password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&p.PasswordConfirmation, "confirm", "", "Password confirmation")
	cmd.Flags().StringVar(&p.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&p.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&p.AuthType, "auth-type", "", "Authentication scheme (default: auth.preferred)")
	cmd.Flags().BoolVar(&p.IsAdmin, "admin", false, "Make the user an admin")
	_ = cmd.MarkFlagRequired("login")
	return cmd
}

func newUsersPasswdCmd(app *App) *cobra.Command {
	var password, confirm string

	cmd := &cobra.Command{
		Use:   "passwd <login>",
		Short: "Change a user's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.users()
			if err != nil {
				return writeErr(cmd, err)
			}
			if password == "" && confirm == "" {
				if err := promptPassword(&password, &confirm); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := users.ChangePassword(cmd.Context(), args[0], password, confirm); err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "password changed for %s\n", args[0])
			return err
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "New password (prompted when omitted)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "New password confirmation")
	return cmd
}

func newUsersAuthTypeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "auth-type <login> <scheme>",
		Short: "Change the scheme a user authenticates with",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.users()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := users.UpdateAuthType(cmd.Context(), args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s now authenticates with %s\n", args[0], args[1])
			return err
		},
	}
}

func newUsersTokenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "token <login>",
		Short: "Issue a new feed/API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.users()
			if err != nil {
				return writeErr(cmd, err)
			}
			token, err := users.RefreshToken(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}

func newUsersDestroyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy <login>",
		Short: "Delete a user and everything the user owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.users()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := users.Destroy(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "destroyed user %s\n", args[0])
			return err
		},
	}
}

// promptPassword asks for a password and its confirmation without echo.
func promptPassword(password, confirm *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				Description(fmt.Sprintf("%d to %d characters", model.PasswordMinLength, model.PasswordMaxLength)).
				EchoMode(huh.EchoModePassword).
				Value(password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(confirm),
		),
	).Run()
}
