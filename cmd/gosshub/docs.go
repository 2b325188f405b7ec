package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"gosshub/client/internal/api"
	"gosshub/client/internal/guard"
	"gosshub/client/internal/history"
	"gosshub/client/internal/model"
	"gosshub/client/internal/render"
	"gosshub/client/internal/view"
)

func (c *cli) docsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "List, read and write documents",
	}
	cmd.AddCommand(
		c.docsListCommand(),
		c.docsShowCommand(),
		c.docsHistoryCommand(),
		c.docsCreateCommand(),
		c.docsEditCommand(),
		c.docsRestoreCommand(),
	)
	return cmd
}

func (c *cli) docsListCommand() *cobra.Command {
	var opts api.ListOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			documents, err := view.NewDocumentList(c.app.API, c.app.Store).Load(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return render.DocumentList(c.out, documents)
		},
	}
	cmd.Flags().IntVar(&opts.Page, "page", 0, "page number")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "search text")
	return cmd
}

// openDocument loads uuid at hash. The caller closes the view.
func (c *cli) openDocument(ctx context.Context, uuid, hash string) (*view.DocumentView, error) {
	v := c.app.OpenDocument(ctx, uuid)
	if err := v.Load(hash); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func (c *cli) showSnapshot(snap view.Snapshot) error {
	role := guard.RoleOf(c.app.Store.State())
	return render.Document(c.out, snap.Document.UUID, snap.Mode, snap.Current, snap.Position, snap.Total, snap.Threads, render.DocumentOptions{
		CanReply: guard.Can(role, guard.ActionComment),
		Path:     snap.Path,
	})
}

func (c *cli) docsShowCommand() *cobra.Command {
	var hash string
	var older int
	cmd := &cobra.Command{
		Use:   "show <uuid>",
		Short: "Show a document version with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.openDocument(cmd.Context(), args[0], hash)
			if err != nil {
				return err
			}
			defer v.Close()
			for ; older > 0; older-- {
				if !v.Older() {
					break
				}
			}
			return c.showSnapshot(v.Snapshot())
		},
	}
	cmd.Flags().StringVar(&hash, "hash", "", "version hash (default latest)")
	cmd.Flags().IntVar(&older, "back", 0, "step this many versions back from the selected one")
	return access(cmd, "protected")
}

func (c *cli) docsHistoryCommand() *cobra.Command {
	var hash string
	cmd := &cobra.Command{
		Use:   "history <uuid>",
		Short: "List every version of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.openDocument(cmd.Context(), args[0], hash)
			if err != nil {
				return err
			}
			defer v.Close()
			snap := v.Snapshot()
			return render.History(c.out, snap.Document.Transformations, snap.Position-1)
		},
	}
	cmd.Flags().StringVar(&hash, "hash", "", "version to mark as current")
	return access(cmd, "protected")
}

func (c *cli) docsCreateCommand() *cobra.Command {
	var body, file, rawTags string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := c.readBody(body, file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("document body is empty")
			}
			tagList, err := parseTags(rawTags)
			if err != nil {
				return err
			}
			msg, err := c.app.API.CreateDocument(cmd.Context(), api.DocumentInput{Body: text, Tags: tagList})
			if err != nil {
				return err
			}
			c.printf("%s\n", msg.Message)
			return nil
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "document text")
	cmd.Flags().StringVar(&file, "file", "", "read the text from a file, - for stdin")
	cmd.Flags().StringVar(&rawTags, "tags", "", "comma separated tags, at most 3")
	return access(cmd, "protected")
}

func (c *cli) docsEditCommand() *cobra.Command {
	var body, file, rawTags string
	cmd := &cobra.Command{
		Use:   "edit <uuid>",
		Short: "Write a new version of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.openDocument(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			defer v.Close()
			if err := v.Edit(); err != nil {
				return err
			}
			draft := v.Snapshot().Draft
			if body != "" || file != "" {
				if draft.Body, err = c.readBody(body, file); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("tags") {
				if draft.Tags, err = parseTags(rawTags); err != nil {
					return err
				}
			}
			if err := v.SetDraft(draft.Body, draft.Tags); err != nil {
				return err
			}
			changed, err := v.Save()
			if err != nil {
				return err
			}
			if !changed {
				c.printf("No changes.\n")
				return nil
			}
			return c.showSnapshot(v.Snapshot())
		},
	}
	cmd.Flags().StringVar(&body, "body", "", "new document text")
	cmd.Flags().StringVar(&file, "file", "", "read the text from a file, - for stdin")
	cmd.Flags().StringVar(&rawTags, "tags", "", "replace the tags, comma separated")
	return access(cmd, "protected")
}

func (c *cli) docsRestoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <uuid> <hash>",
		Short: "Make an earlier version the latest one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := c.openDocument(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			defer v.Close()
			if v.Snapshot().Mode == history.ModeMissing {
				return history.ErrVersionNotFound
			}
			if err := v.Restore(); err != nil {
				return err
			}
			c.printf("Restored version %s.\n", args[1])
			return nil
		},
	}
	return access(cmd, "protected")
}

func (c *cli) commentCommand() *cobra.Command {
	var parent, body string
	cmd := &cobra.Command{
		Use:   "comment <uuid> [text]",
		Short: "Comment on a document or reply to a comment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				body = args[1]
			}
			v, err := c.openDocument(cmd.Context(), args[0], "")
			if err != nil {
				return err
			}
			defer v.Close()
			if err := v.Comment(model.ID(parent), body); err != nil {
				return err
			}
			snap := v.Snapshot()
			return render.Comments(c.out, snap.Threads, true)
		},
	}
	cmd.Flags().StringVar(&parent, "reply-to", "", "id of the comment to reply to")
	cmd.Flags().StringVar(&body, "body", "", "comment text")
	return access(cmd, "protected")
}

func (c *cli) watchCommand(watch bool) *cobra.Command {
	use, short, done := "watch <uuid>", "Get notified about changes to a document", "Watching %s.\n"
	if !watch {
		use, short, done = "unwatch <uuid>", "Stop watching a document", "No longer watching %s.\n"
	}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := c.app.OpenDocument(cmd.Context(), args[0])
			defer v.Close()
			if err := v.SetWatching(watch); err != nil {
				return err
			}
			c.printf(done, args[0])
			return nil
		},
	}
	return access(cmd, "protected")
}

func (c *cli) tagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "Show recently used tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := view.RecentTags(cmd.Context(), c.app.API)
			if err != nil {
				return err
			}
			return render.Tags(c.out, list)
		},
	}
}

func (c *cli) tagCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <slug>",
		Short: "List documents with a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			documents, err := view.NewDocumentList(c.app.API, c.app.Store).ByTag(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render.DocumentList(c.out, documents)
		},
	}
}

func (c *cli) logCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := c.app.API.Log(cmd.Context())
			if err != nil {
				return err
			}
			return render.Log(c.out, entries)
		},
	}
	return access(cmd, "protected")
}
