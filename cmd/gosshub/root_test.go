package main

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosshub/client/internal/app"
	"gosshub/client/internal/guard"
)

func TestCommandAccess(t *testing.T) {
	root := newRootCommand(strings.NewReader(""), &bytes.Buffer{})

	cases := []struct {
		path []string
		want guard.Access
	}{
		{[]string{"login"}, guard.Unauthed},
		{[]string{"register"}, guard.Unauthed},
		{[]string{"logout"}, guard.Public},
		{[]string{"docs", "list"}, guard.Public},
		{[]string{"docs", "show"}, guard.Protected},
		{[]string{"docs", "edit"}, guard.Protected},
		{[]string{"comment"}, guard.Protected},
		{[]string{"tags"}, guard.Public},
		{[]string{"log"}, guard.Protected},
		{[]string{"account", "update"}, guard.Protected},
		{[]string{"admin", "users"}, guard.Admin},
		{[]string{"admin", "save-page"}, guard.Admin},
		{[]string{"page"}, guard.Public},
		{[]string{"search"}, guard.Public},
		{[]string{"mirror"}, guard.Protected},
		{[]string{"mirror", "log"}, guard.Public},
		{[]string{"mirror", "show"}, guard.Public},
		{[]string{"archive", "list"}, guard.Protected},
	}
	for _, tc := range cases {
		t.Run(strings.Join(tc.path, " "), func(t *testing.T) {
			cmd, _, err := root.Find(tc.path)
			require.NoError(t, err)
			require.Equal(t, tc.path[len(tc.path)-1], cmd.Name())
			assert.Equal(t, tc.want, accessOf(cmd))
		})
	}
}

func TestReadBody(t *testing.T) {
	c := &cli{}

	body, err := c.readBody("inline", "")
	require.NoError(t, err)
	assert.Equal(t, "inline", body)

	_, err = c.readBody("inline", "file.md")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# From file"), 0o644))
	body, err = c.readBody("", path)
	require.NoError(t, err)
	assert.Equal(t, "# From file", body)

	stdin := newRootCommandCLI("# From stdin\n")
	body, err = stdin.readBody("", "-")
	require.NoError(t, err)
	assert.Equal(t, "# From stdin\n", body)
}

func TestReadLine(t *testing.T) {
	var out bytes.Buffer
	c := newRootCommandCLI("avery\r\nlast")
	c.out = &out

	line, err := c.readLine("Username: ")
	require.NoError(t, err)
	assert.Equal(t, "avery", line)
	assert.Equal(t, "Username: ", out.String())

	line, err = c.readLine("Again: ")
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = c.readLine("Gone: ")
	assert.Error(t, err)
}

func TestParseTags(t *testing.T) {
	tags, err := parseTags("  ")
	require.NoError(t, err)
	assert.Equal(t, []string{}, tags)

	tags, err = parseTags("go, cli")
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func newRootCommandCLI(input string) *cli {
	r := strings.NewReader(input)
	return &cli{in: bufio.NewReader(r), stdin: r, out: &bytes.Buffer{}}
}

func testEnv(t *testing.T, apiURL string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("GOSSHUB_API_URL", apiURL)
	t.Setenv("GOSSHUB_TOKEN_FILE", filepath.Join(dir, "token"))
	t.Setenv("GOSSHUB_REPOS_DIR", filepath.Join(dir, "repos"))
	t.Setenv("GOSSHUB_LOG_LEVEL", "error")
}

func TestExecutePublicCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/page" || r.URL.Query().Get("slug") != "about" {
			t.Errorf("unexpected request %s", r.URL)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"slug":"about","title":"About","body":"Hello."}`))
	}))
	defer srv.Close()
	testEnv(t, srv.URL)

	var out bytes.Buffer
	c := newCLI(strings.NewReader(""), &out)
	require.NoError(t, c.execute(context.Background(), []string{"page", "about"}))
	assert.Equal(t, "About\n\nHello.\n", out.String())
	assert.Nil(t, c.app)
}

func TestExecuteProtectedCommandWithoutLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	}))
	defer srv.Close()
	testEnv(t, srv.URL)

	c := newCLI(strings.NewReader(""), &bytes.Buffer{})
	err := c.execute(context.Background(), []string{"log"})
	assert.ErrorIs(t, err, app.ErrLoginRequired)
	assert.Nil(t, c.app)
}
