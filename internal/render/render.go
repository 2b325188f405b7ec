// Package render draws documents, version banners and comment threads for a
// terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"gosshub/client/internal/history"
	"gosshub/client/internal/model"
	"gosshub/client/internal/search"
	"gosshub/client/internal/thread"
)

const dateLayout = "2006-01-02"

var (
	banner = color.New(color.FgYellow)
	muted  = color.New(color.Faint)
	warn   = color.New(color.FgRed, color.Bold)
)

func FormatDate(t model.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	return t.Local().Format(dateLayout)
}

// Byline is "<author> on <date>", naming deleted accounts.
func Byline(author string, date model.Time) string {
	return fmt.Sprintf("%s on %s", model.DisplayName(author), FormatDate(date))
}

// VersionBanner is empty for the latest version.
func VersionBanner(mode history.Mode, position, total int) string {
	switch mode {
	case history.ModeHistorical:
		return fmt.Sprintf("Viewing a previous version of this document (version %d of %d)", position, total)
	case history.ModeEditing:
		return "Editing the latest version"
	case history.ModeMissing:
		return "Version not found"
	default:
		return ""
	}
}

// DocumentOptions controls the parts of a document view that depend on the
// session.
type DocumentOptions struct {
	CanReply bool
	Path     string
}

// Document writes one version of a document followed by its comment
// threads.
func Document(w io.Writer, uuid string, mode history.Mode, current model.Transformation, position, total int, roots []*thread.Node, opts DocumentOptions) error {
	if text := VersionBanner(mode, position, total); text != "" {
		style := banner
		if mode == history.ModeMissing {
			style = warn
		}
		if _, err := style.Fprintln(w, text); err != nil {
			return err
		}
		if mode == history.ModeMissing {
			_, err := fmt.Fprintf(w, "No version of %s matches that hash.\n", uuid)
			return err
		}
	}

	fmt.Fprintln(w, strings.TrimRight(current.Body, "\n"))
	if len(current.Tags) > 0 {
		fmt.Fprintf(w, "\ntags: %s\n", strings.Join(prefixed("#", current.Tags), " "))
	}
	muted.Fprintln(w, Byline(current.Author, current.Date))
	if opts.Path != "" {
		muted.Fprintln(w, opts.Path)
	}
	fmt.Fprintln(w)
	return Comments(w, roots, opts.CanReply)
}

func prefixed(prefix string, items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = prefix + item
	}
	return out
}

// Comments writes the threads depth first, indenting replies. Comments that
// may be replied to carry their id so it can be passed to a reply command.
func Comments(w io.Writer, roots []*thread.Node, canReply bool) error {
	if len(roots) == 0 {
		_, err := muted.Fprintln(w, "No comments yet.")
		return err
	}
	return thread.Walk(roots, func(node *thread.Node, depth int) error {
		indent := strings.Repeat("  ", depth)
		header := Byline(node.Comment.Author, node.Comment.Date)
		if canReply && thread.CanReply(depth) {
			header += fmt.Sprintf(" [reply: %s]", node.Comment.ID)
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", indent, header); err != nil {
			return err
		}
		for _, line := range strings.Split(node.Comment.Body, "\n") {
			if _, err := fmt.Fprintf(w, "%s  %s\n", indent, line); err != nil {
				return err
			}
		}
		return nil
	})
}

// History lists every version, newest first, marking the one on screen.
func History(w io.Writer, transformations []model.Transformation, current int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, t := range transformations {
		marker := " "
		if i == current {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", marker, len(transformations)-i, t.Hash, model.DisplayName(t.Author), FormatDate(t.Date))
	}
	return tw.Flush()
}

// DocumentList shows the latest version of each document in one line.
func DocumentList(w io.Writer, documents []model.Document) error {
	if len(documents) == 0 {
		_, err := muted.Fprintln(w, "No documents.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, d := range documents {
		latest, ok := d.Latest()
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.UUID, Excerpt(latest.Body, 60), model.DisplayName(latest.Author), FormatDate(latest.Date))
	}
	return tw.Flush()
}

// Excerpt returns the first line of body cut to max runes.
func Excerpt(body string, max int) string {
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(body), "\n", 2)[0])
	runes := []rune(line)
	if len(runes) <= max {
		return line
	}
	return string(runes[:max-1]) + "…"
}

func Tags(w io.Writer, tags []model.Tag) error {
	if len(tags) == 0 {
		_, err := muted.Fprintln(w, "No tags to display.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range tags {
		fmt.Fprintf(tw, "#%s\t%d\n", t.Name, t.Count)
	}
	return tw.Flush()
}

func Users(w io.Writer, users []model.User) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tADMIN\tVERIFIED\tJOINED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\t%s\n", u.ID, u.Username, u.Email, u.IsAdmin, u.IsVerified, FormatDate(u.JoinDate))
	}
	return tw.Flush()
}

func Pages(w io.Writer, pages []model.Page) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tTITLE")
	for _, p := range pages {
		fmt.Fprintf(tw, "%s\t%s\n", p.Slug, p.Title)
	}
	return tw.Flush()
}

func Log(w io.Writer, entries []model.LogEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", FormatDate(e.Date), e.Visibility, e.Body)
	}
	return tw.Flush()
}

// SearchResults lists hits with the backend that answered.
func SearchResults(w io.Writer, resp search.Response) error {
	if len(resp.Results) == 0 {
		_, err := muted.Fprintf(w, "No results for %q.\n", resp.Query)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range resp.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Type, r.DocumentUUID, Excerpt(r.Title, 40), Excerpt(r.Snippet, 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := muted.Fprintf(w, "%d of %d results (%s)\n", len(resp.Results), resp.Total, resp.Backend)
	return err
}
