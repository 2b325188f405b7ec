package history

import (
	"testing"

	"gosshub/client/internal/model"

	"github.com/stretchr/testify/assert"
)

func sequence(hashes ...string) []model.Transformation {
	out := make([]model.Transformation, 0, len(hashes))
	for _, h := range hashes {
		out = append(out, model.Transformation{Hash: h, Body: "body " + h, Tags: []string{"tag-" + h}})
	}
	return out
}

func TestIndexForHash(t *testing.T) {
	ts := sequence("c", "b", "a")
	assert.Equal(t, 1, IndexForHash(ts, "b"))
	assert.Equal(t, 0, IndexForHash(ts, "c"))
	assert.Equal(t, 2, IndexForHash(ts, "a"))
	assert.Equal(t, NotFound, IndexForHash(ts, "z"))
	assert.Equal(t, NotFound, IndexForHash(nil, "z"))
}

func TestResolveInitialIndex(t *testing.T) {
	cases := []struct {
		name string
		ts   []model.Transformation
		hash string
		want int
	}{
		{name: "no hash single version", ts: sequence("a"), want: 0},
		{name: "no hash many versions", ts: sequence("c", "b", "a"), want: 0},
		{name: "hash match", ts: sequence("c", "b", "a"), hash: "a", want: 2},
		{name: "hash miss", ts: sequence("c", "b", "a"), hash: "z", want: NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveInitialIndex(tc.ts, tc.hash))
		})
	}
}

func TestStep(t *testing.T) {
	ts := sequence("c", "b", "a")
	cases := []struct {
		name           string
		current, delta int
		want           int
	}{
		{name: "newer than latest", current: 0, delta: -1, want: 0},
		{name: "older from latest", current: 0, delta: 1, want: 1},
		{name: "older than oldest", current: 2, delta: 1, want: 2},
		{name: "newer from oldest", current: 2, delta: -1, want: 1},
		{name: "jump out of range", current: 1, delta: 5, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Step(ts, tc.current, tc.delta))
		})
	}
}

func TestOldestNewest(t *testing.T) {
	ts := sequence("c", "b", "a")
	assert.Equal(t, 2, Oldest(ts))
	assert.Equal(t, 0, Newest(ts))
}

func TestTagsEqual(t *testing.T) {
	assert.False(t, TagsEqual([]string{"a", "b"}, []string{"b", "a"}))
	assert.True(t, TagsEqual([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, TagsEqual([]string{"a"}, []string{"a", "b"}))
	assert.True(t, TagsEqual(nil, []string{}))
}

func TestUnchanged(t *testing.T) {
	original := model.Transformation{Body: "text", Tags: []string{"a", "b"}}
	assert.True(t, Unchanged(original, "text", []string{"a", "b"}))
	assert.False(t, Unchanged(original, "text", []string{"b", "a"}))
	assert.False(t, Unchanged(original, "text!", []string{"a", "b"}))
}
