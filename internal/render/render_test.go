package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosshub/client/internal/history"
	"gosshub/client/internal/model"
	"gosshub/client/internal/search"
	"gosshub/client/internal/thread"
)

func init() {
	color.NoColor = true
}

func date(s string) model.Time {
	t, _ := time.Parse(dateLayout, s)
	return model.Time{Time: t}
}

func TestVersionBanner(t *testing.T) {
	assert.Equal(t, "", VersionBanner(history.ModeLatest, 1, 3))
	assert.Equal(t, "Viewing a previous version of this document (version 2 of 3)", VersionBanner(history.ModeHistorical, 2, 3))
	assert.Equal(t, "Version not found", VersionBanner(history.ModeMissing, 0, 3))
}

func TestByline(t *testing.T) {
	assert.Equal(t, "Deleted user on unknown date", Byline("", model.Time{}))
	assert.Contains(t, Byline("avery", date("2022-03-01")), "avery on 2022-0")
}

func TestComments(t *testing.T) {
	roots := thread.Build([]model.Comment{
		{ID: "1", Author: "avery", Body: "first"},
		{ID: "2", ParentID: "1", Author: "", Body: "reply"},
		{ID: "3", ParentID: "2", Body: "d2"},
		{ID: "4", ParentID: "3", Body: "d3"},
		{ID: "5", ParentID: "4", Body: "d4"},
	})

	var buf bytes.Buffer
	require.NoError(t, Comments(&buf, roots, true))
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.True(t, strings.HasPrefix(lines[0], "avery on"))
	assert.Contains(t, lines[0], "[reply: 1]")
	assert.Equal(t, "  first", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "  Deleted user on"))
	assert.Contains(t, out, "[reply: 4]")
	assert.NotContains(t, out, "[reply: 5]")
	assert.Equal(t, "          d4", lines[9])

	buf.Reset()
	require.NoError(t, Comments(&buf, roots, false))
	assert.NotContains(t, buf.String(), "[reply")
}

func TestCommentsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Comments(&buf, nil, true))
	assert.Equal(t, "No comments yet.\n", buf.String())
}

func TestDocumentMissingVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Document(&buf, "doc-1", history.ModeMissing, model.Transformation{}, 0, 2, nil, DocumentOptions{}))
	assert.Equal(t, "Version not found\nNo version of doc-1 matches that hash.\n", buf.String())
}

func TestDocumentHistorical(t *testing.T) {
	var buf bytes.Buffer
	current := model.Transformation{Hash: "b", Body: "# Title\n", Tags: []string{"go", "wiki"}, Author: "avery", Date: date("2022-03-01")}
	require.NoError(t, Document(&buf, "doc-1", history.ModeHistorical, current, 2, 3, nil, DocumentOptions{Path: "/document/doc-1/hash/b"}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Viewing a previous version of this document (version 2 of 3)\n# Title\n"))
	assert.Contains(t, out, "tags: #go #wiki")
	assert.Contains(t, out, "/document/doc-1/hash/b")
	assert.Contains(t, out, "No comments yet.")
}

func TestHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, History(&buf, []model.Transformation{{Hash: "c", Author: "avery"}, {Hash: "b"}}, 1))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "   2  c  avery"))
	assert.True(t, strings.HasPrefix(lines[1], "*  1  b  Deleted user"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "hello", Excerpt("  hello\nworld", 10))
	assert.Equal(t, "abcd…", Excerpt("abcdefgh", 5))
}

func TestTagsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tags(&buf, nil))
	assert.Equal(t, "No tags to display.\n", buf.String())
}

func TestSearchResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SearchResults(&buf, search.Response{Query: "plan", Backend: "pgfts"}))
	assert.Equal(t, "No results for \"plan\".\n", buf.String())

	buf.Reset()
	require.NoError(t, SearchResults(&buf, search.Response{
		Query:   "plan",
		Backend: "meilisearch",
		Total:   3,
		Results: []search.Result{{Type: search.ResultDocument, DocumentUUID: "doc-1", Title: "Plan", Snippet: "the plan"}},
	}))
	out := buf.String()
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "the plan")
	assert.True(t, strings.HasSuffix(out, "1 of 3 results (meilisearch)\n"))
}
