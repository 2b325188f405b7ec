// Package history addresses the versions of a document. Transformations are
// always ordered newest first, so index 0 is the current version.
package history

import "gosshub/client/internal/model"

// NotFound is returned by hash lookups that match nothing.
const NotFound = -1

// IndexForHash returns the position of the transformation carrying hash.
func IndexForHash(transformations []model.Transformation, hash string) int {
	for i, t := range transformations {
		if t.Hash == hash {
			return i
		}
	}
	return NotFound
}

// ResolveInitialIndex picks the version to show when a document is opened.
// Without a hash the latest version is shown.
func ResolveInitialIndex(transformations []model.Transformation, hash string) int {
	if hash == "" {
		return 0
	}
	return IndexForHash(transformations, hash)
}

// Step moves delta positions when the target exists and stays put otherwise.
// Positive deltas go towards older versions.
func Step(transformations []model.Transformation, current, delta int) int {
	next := current + delta
	if next < 0 || next >= len(transformations) {
		return current
	}
	return next
}

func Oldest(transformations []model.Transformation) int {
	return len(transformations) - 1
}

func Newest([]model.Transformation) int {
	return 0
}

// TagsEqual compares tag sequences position by position.
func TagsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Unchanged reports whether submitting body and tags over original would be
// a no-op.
func Unchanged(original model.Transformation, body string, tags []string) bool {
	return original.Body == body && TagsEqual(original.Tags, tags)
}
