package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/filex"
	"github.com/spf13/cobra"
)

type credentialFlags struct {
	name  string
	email string
}

func newSignupCmd(app *App) *cobra.Command {
	f := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := app.prompt(cmd, f.name, "Name")
			if err != nil {
				return err
			}
			email, err := app.prompt(cmd, f.email, "Email")
			if err != nil {
				return err
			}
			password, err := GetPassword(app.reader, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			u, err := app.client.Signup(cmd.Context(), name, email, string(password))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s <%s>\n", u.Name, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	f := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := app.prompt(cmd, f.email, "Email")
			if err != nil {
				return err
			}
			password, err := GetPassword(app.reader, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			sess, err := app.client.Login(cmd.Context(), email, string(password))
			if err != nil {
				return err
			}

			if err := filex.WriteSecret(app.config.TokenFile, []byte(sess.Token)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", sess.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := filex.RemoveSecret(app.config.TokenFile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.authorized(cmd.Context(), func(ctx context.Context) error {
				u, err := app.client.Me(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", u.Name, u.Email, u.UserID)
				return nil
			})
		},
	}
}
