package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gosshub/client/internal/app"
	"gosshub/client/internal/export"
	"gosshub/client/internal/render"
	"gosshub/client/internal/search"
)

func (c *cli) exportCommand() *cobra.Command {
	var hash, format, out string
	var comments, upload bool
	cmd := &cobra.Command{
		Use:   "export <uuid>",
		Short: "Export a document version as Markdown, HTML, PDF or DOCX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			result, obj, err := c.app.ExportDocument(cmd.Context(), args[0], export.Request{
				Hash:            hash,
				Format:          f,
				IncludeComments: comments,
			}, upload)
			if err != nil {
				return err
			}
			switch {
			case out == "-":
				_, err = c.out.Write(result.Data)
				return err
			case out == "":
				out = result.Filename
			default:
				if info, statErr := os.Stat(out); statErr == nil && info.IsDir() {
					out = filepath.Join(out, result.Filename)
				}
			}
			if err := os.WriteFile(out, result.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			c.printf("Wrote %s (%d bytes, version %s).\n", out, len(result.Data), result.Hash)
			if obj != nil {
				c.printf("Archived as %s.\n", obj.Key)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&hash, "hash", "", "version hash (default latest)")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatMarkdown), "md, html, pdf or docx")
	cmd.Flags().BoolVar(&comments, "comments", false, "include the comment threads")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory, - for stdout")
	cmd.Flags().BoolVar(&upload, "upload", false, "also upload the export to the archive bucket")
	return access(cmd, "protected")
}

func (c *cli) mirrorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror <uuid>...",
		Short: "Copy documents into the local git repositories and the offline database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, uuid := range args {
				result, err := c.app.MirrorDocument(cmd.Context(), uuid)
				if err != nil {
					return fmt.Errorf("%s: %w", uuid, err)
				}
				c.printf("%s\t%s\n", uuid, describeMirror(result))
			}
			return nil
		},
	}
	cmd.AddCommand(c.mirrorLogCommand(), c.mirrorShowCommand())
	return access(cmd, "protected")
}

func describeMirror(result app.MirrorResult) string {
	s := "git disabled"
	if result.Git.Path != "" {
		s = fmt.Sprintf("%d new of %d versions in %s", result.Git.Added, result.Git.Total, result.Git.Path)
	}
	if result.Database {
		s += ", database updated"
	}
	return s
}

func (c *cli) mirrorLogCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "log <uuid>",
		Short: "List the versions already mirrored to git",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.app.Git == nil {
				return fmt.Errorf("%w: git mirror (set repos_dir)", app.ErrDisabled)
			}
			commits, err := c.app.Git.History(args[0], limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			for _, commit := range commits {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", commit.Transformation, commit.Author, commit.CreatedAt.Local().Format("2006-01-02"), commit.Message)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "most recent versions to list, 0 for all")
	return cmd
}

func (c *cli) mirrorShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <uuid> <hash>",
		Short: "Print a mirrored version without contacting the API",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.app.Git == nil {
				return fmt.Errorf("%w: git mirror (set repos_dir)", app.ErrDisabled)
			}
			body, meta, err := c.app.Git.Body(args[0], args[1])
			if err != nil {
				return err
			}
			c.printf("%s, %s\n\n%s\n", meta.Author, meta.Date.Local().Format("2006-01-02"), body)
			return nil
		},
	}
	return cmd
}

func (c *cli) searchCommand() *cobra.Command {
	var q search.Query
	var kind string
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search documents and comments in the offline index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch search.ResultType(kind) {
			case "", search.ResultDocument, search.ResultComment:
				q.FilterType = search.ResultType(kind)
			default:
				return fmt.Errorf("unknown result type %q", kind)
			}
			q.Text = args[0]
			resp := c.app.Search.Search(cmd.Context(), q)
			if resp.Backend == "" {
				return search.ErrUnavailable
			}
			return render.SearchResults(c.out, resp)
		},
	}
	cmd.Flags().StringVar(&kind, "type", "", "document or comment")
	cmd.Flags().StringVar(&q.Tag, "tag", "", "only documents with this tag")
	cmd.Flags().IntVar(&q.Limit, "limit", 20, "maximum results")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "results to skip")
	return cmd
}

func (c *cli) indexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the search index from the offline database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			documents, comments, err := c.app.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			c.printf("Indexed %d documents and %d comments.\n", documents, comments)
			return nil
		},
	}
	return access(cmd, "protected")
}

func (c *cli) archiveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse exports uploaded to object storage",
	}
	var expiry time.Duration
	list := &cobra.Command{
		Use:   "list <uuid>",
		Short: "List archived exports of a document with download links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.app.Archive == nil {
				return fmt.Errorf("%w: export archive (set s3_endpoint)", app.ErrDisabled)
			}
			objects, err := c.app.Archive.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			for _, obj := range objects {
				link, err := c.app.Archive.URL(cmd.Context(), obj.Key, expiry)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", obj.Key, obj.Size, obj.LastModified.Local().Format(time.DateTime), link)
			}
			return tw.Flush()
		},
	}
	list.Flags().DurationVar(&expiry, "expiry", time.Hour, "lifetime of the download links")
	cmd.AddCommand(access(list, "protected"))
	return cmd
}
