package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gosshub/client/internal/model"
	"gosshub/client/internal/render"
	"gosshub/client/internal/view"
)

func (c *cli) userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user <username>",
		Short: "Show a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := c.app.API.Users(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render.Users(c.out, users)
		},
	}
	return access(cmd, "protected")
}

func (c *cli) accountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage your own account",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := view.LoadAccount(cmd.Context(), c.app.API, c.app.Store, c.app.Username())
			if err != nil {
				return err
			}
			return render.Users(c.out, []model.User{account.User})
		},
	}

	update := &cobra.Command{
		Use:       "update <username|email|password> [value]",
		Short:     "Change one account field",
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{view.FieldUsername, view.FieldEmail, view.FieldPassword},
		RunE: func(cmd *cobra.Command, args []string) error {
			field := args[0]
			var value string
			var err error
			switch {
			case len(args) == 2:
				value = args[1]
			case field == view.FieldPassword:
				if value, err = c.readPassword("New password: "); err != nil {
					return err
				}
			default:
				if value, err = c.readLine("New " + field + ": "); err != nil {
					return err
				}
			}
			account, err := view.LoadAccount(cmd.Context(), c.app.API, c.app.Store, c.app.Username())
			if err != nil {
				return err
			}
			sent, err := account.Update(cmd.Context(), field, value)
			if err != nil {
				return err
			}
			if !sent {
				c.printf("No changes.\n")
				return nil
			}
			c.printf("Updated %s.\n", field)
			return nil
		},
	}

	var yes bool
	remove := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account and log out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				answer, err := c.readLine("Delete your account? Type yes to confirm: ")
				if err != nil {
					return err
				}
				if strings.TrimSpace(answer) != "yes" {
					return errors.New("aborted")
				}
			}
			account, err := view.LoadAccount(cmd.Context(), c.app.API, c.app.Store, c.app.Username())
			if err != nil {
				return err
			}
			if err := account.Delete(cmd.Context()); err != nil {
				return err
			}
			c.printf("Account deleted.\n")
			return nil
		},
	}
	remove.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(show, update, remove)
	for _, sub := range cmd.Commands() {
		access(sub, "protected")
	}
	return access(cmd, "protected")
}

func (c *cli) adminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage users and pages",
	}
	panel := func(cmd *cobra.Command) (*view.AdminPanel, error) {
		return view.LoadAdminPanel(cmd.Context(), c.app.API, c.app.Username())
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "List every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := panel(cmd)
			if err != nil {
				return err
			}
			return render.Users(c.out, p.Users)
		},
	}

	pages := &cobra.Command{
		Use:   "pages",
		Short: "List every page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := panel(cmd)
			if err != nil {
				return err
			}
			return render.Pages(c.out, p.Pages)
		},
	}

	flag := func(use, short string, set func(*view.AdminPanel, *cobra.Command, model.ID, bool) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <user-id> <true|false>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				value, err := strconv.ParseBool(args[1])
				if err != nil {
					return err
				}
				p, err := panel(cmd)
				if err != nil {
					return err
				}
				if err := set(p, cmd, model.ID(args[0]), value); err != nil {
					return err
				}
				return render.Users(c.out, p.Users)
			},
		}
	}
	setAdmin := flag("set-admin", "Grant or revoke admin rights", func(p *view.AdminPanel, cmd *cobra.Command, id model.ID, v bool) error {
		return p.SetAdmin(cmd.Context(), id, v)
	})
	verify := flag("verify", "Mark a user verified or unverified", func(p *view.AdminPanel, cmd *cobra.Command, id model.ID, v bool) error {
		return p.SetVerified(cmd.Context(), id, v)
	})

	deleteUser := &cobra.Command{
		Use:   "delete-user <user-id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := panel(cmd)
			if err != nil {
				return err
			}
			if err := p.DeleteUser(cmd.Context(), model.ID(args[0])); err != nil {
				return err
			}
			return render.Users(c.out, p.Users)
		},
	}

	var title, body, file string
	var create bool
	savePage := &cobra.Command{
		Use:   "save-page <slug>",
		Short: "Create or update a static page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := c.readBody(body, file)
			if err != nil {
				return err
			}
			p, err := panel(cmd)
			if err != nil {
				return err
			}
			page := model.Page{Slug: args[0], Title: title, Body: text}
			if err := p.SavePage(cmd.Context(), page, create); err != nil {
				return err
			}
			return render.Pages(c.out, p.Pages)
		},
	}
	savePage.Flags().StringVar(&title, "title", "", "page title")
	savePage.Flags().StringVar(&body, "body", "", "page text")
	savePage.Flags().StringVar(&file, "file", "", "read the text from a file, - for stdin")
	savePage.Flags().BoolVar(&create, "create", false, "create a new page instead of updating")

	deletePage := &cobra.Command{
		Use:   "delete-page <slug>",
		Short: "Delete a static page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := panel(cmd)
			if err != nil {
				return err
			}
			if err := p.DeletePage(cmd.Context(), args[0]); err != nil {
				return err
			}
			return render.Pages(c.out, p.Pages)
		},
	}

	cmd.AddCommand(users, pages, setAdmin, verify, deleteUser, savePage, deletePage)
	for _, sub := range cmd.Commands() {
		access(sub, "admin")
	}
	return access(cmd, "admin")
}

func (c *cli) pageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "page <slug>",
		Short: "Show a static page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := c.app.API.Page(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printf("%s\n\n%s\n", page.Title, page.Body)
			return nil
		},
	}
}
