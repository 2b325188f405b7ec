package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gosshub/client/internal/api"
	"gosshub/client/internal/guard"
)

func (c *cli) loginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and keep the token for later commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := ""
			if len(args) == 1 {
				username = args[0]
			}
			var err error
			if username == "" {
				if username, err = c.readLine("Username: "); err != nil {
					return err
				}
			}
			password, err := c.readPassword("Password: ")
			if err != nil {
				return err
			}
			if _, err := c.app.API.Login(cmd.Context(), strings.TrimSpace(username), password); err != nil {
				return err
			}
			c.printf("Logged in as %s.\n", c.app.Username())
			return nil
		},
	}
	return access(cmd, "unauthed")
}

func (c *cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.API.Logout(cmd.Context()); err != nil {
				return err
			}
			c.printf("Logged out.\n")
			return nil
		},
	}
}

func (c *cli) registerCommand() *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if username == "" {
				if username, err = c.readLine("Username: "); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = c.readLine("Email: "); err != nil {
					return err
				}
			}
			password, err := c.readPassword("Password: ")
			if err != nil {
				return err
			}
			repeat, err := c.readPassword("Repeat password: ")
			if err != nil {
				return err
			}
			msg, err := c.app.API.Register(cmd.Context(), api.Registration{
				Username:       strings.TrimSpace(username),
				Email:          strings.TrimSpace(email),
				Password:       password,
				RepeatPassword: repeat,
			})
			if err != nil {
				return err
			}
			c.printf("%s\n", msg.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return access(cmd, "unauthed")
}

func (c *cli) verifyEmailCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-email <token>",
		Short: "Confirm an email address with the token from the verification mail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := c.app.API.VerifyEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printf("%s\n", msg.Message)
			return nil
		},
	}
}

func (c *cli) resetTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-token <email>",
		Short: "Send a new verification mail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := c.app.API.ResetToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printf("%s\n", msg.Message)
			return nil
		},
	}
}

func (c *cli) resetPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Request a password reset mail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := c.app.API.ResetPassword(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printf("%s\n", msg.Message)
			return nil
		},
	}
	return access(cmd, "unauthed")
}

func (c *cli) newPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new-password <token>",
		Short: "Set a new password with the token from the reset mail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := c.readPassword("New password: ")
			if err != nil {
				return err
			}
			repeat, err := c.readPassword("Repeat password: ")
			if err != nil {
				return err
			}
			msg, err := c.app.API.NewPassword(cmd.Context(), password, repeat, args[0])
			if err != nil {
				return err
			}
			c.printf("%s\n", msg.Message)
			return nil
		},
	}
	return access(cmd, "unauthed")
}

func (c *cli) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.app.Store.State()
			if !s.LoggedIn {
				c.printf("Not logged in.\n")
				return nil
			}
			c.printf("%s (%s)\n", s.User.Username, guard.RoleOf(s))
			return nil
		},
	}
}

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the API and every configured offline component",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			failed := 0
			for _, check := range c.app.Ready(cmd.Context()) {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", check.Name, check.Status, check.Error)
				if check.Status == "error" {
					failed++
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d component(s) not ready", failed)
			}
			return nil
		},
	}
}
