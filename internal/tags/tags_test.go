package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "golang2", Sanitize("  Go_Lang2! "))
	assert.Equal(t, "go-lang", Sanitize("Go-Lang"))
	assert.Equal(t, "", Sanitize("!!!"))
}

func TestSanitizeAndSlugifyDisagreeOnUnderscore(t *testing.T) {
	assert.Equal(t, "golang-2", Sanitize("Go_Lang-2"))
	assert.Equal(t, "go_lang-2", Slugify("Go_Lang 2"))
}

func TestAdd(t *testing.T) {
	got, err := Add(nil, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, got)

	_, err = Add(got, "alpha")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = Add(got, "   ")
	assert.ErrorIs(t, err, ErrEmpty)

	full := []string{"a", "b", "c"}
	same, err := Add(full, "d")
	assert.ErrorIs(t, err, ErrTooMany)
	assert.Equal(t, full, same)
}

func TestAddDoesNotAlias(t *testing.T) {
	base := make([]string, 1, 4)
	base[0] = "a"
	first, err := Add(base, "b")
	require.NoError(t, err)
	second, err := Add(base, "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, []string{"a", "c"}, second)
}

func TestRemove(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, Remove([]string{"a", "b", "c"}, 1))
	assert.Equal(t, []string{"a"}, Remove([]string{"a"}, 4))
}

func TestParse(t *testing.T) {
	got, err := Parse("go, Rust  go, wasm,zig")
	assert.Error(t, err)
	assert.Equal(t, []string{"go", "rust", "wasm"}, got)

	got, err = Parse("one two")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world_2", Slugify("  Hello   World_2?! "))
}
