package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var loginEmailFlag string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Create a local session for an email address",
	Long: `Store a session for the given email with a freshly generated user id.
The id decides which messages are shown as your own.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginEmailFlag == "" {
			return fmt.Errorf("--email is required")
		}

		deps, err := loadDependencies(commandContext(cmd), depOptions{})
		if err != nil {
			return err
		}
		defer deps.Close()

		user, err := deps.Session.SignIn(loginEmailFlag)
		if err != nil {
			return err
		}
		deps.Logger.Debug().Str("uid", user.UID).Msg("signed in")
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Signed in as %s\n", user.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the local session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		deps, err := loadDependencies(ctx, depOptions{})
		if err != nil {
			return err
		}
		defer deps.Close()

		if err := deps.Controller().Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := loadDependencies(commandContext(cmd), depOptions{})
		if err != nil {
			return err
		}
		defer deps.Close()

		user, ok := deps.Session.CurrentUser()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n  uid: %s\n", user.Email, user.UID)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmailFlag, "email", "", "Email address to sign in with")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
