// Package tags implements the tag field rules shared by the editor and the
// document creation form.
package tags

import (
	"errors"
	"regexp"
	"strings"
)

// Max is the number of tags a single version may carry.
const Max = 3

var (
	ErrEmpty     = errors.New("tag is empty")
	ErrDuplicate = errors.New("tag already added")
	ErrTooMany   = errors.New("a document can have at most 3 tags")
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9-]`)
	whitespace = regexp.MustCompile(`\s+`)
	slugStrip  = regexp.MustCompile(`[^a-zA-Z0-9-_]+`)
)

// Sanitize keeps lowercase letters, digits and hyphens.
func Sanitize(input string) string {
	return disallowed.ReplaceAllString(strings.ToLower(strings.TrimSpace(input)), "")
}

// Add appends the sanitised input to current and returns a new slice.
func Add(current []string, input string) ([]string, error) {
	tag := Sanitize(input)
	if tag == "" {
		return current, ErrEmpty
	}
	for _, existing := range current {
		if existing == tag {
			return current, ErrDuplicate
		}
	}
	if len(current) >= Max {
		return current, ErrTooMany
	}
	next := make([]string, 0, len(current)+1)
	next = append(next, current...)
	return append(next, tag), nil
}

// Remove drops the tag at index. Out of range indexes leave tags unchanged.
func Remove(current []string, index int) []string {
	if index < 0 || index >= len(current) {
		return current
	}
	next := make([]string, 0, len(current)-1)
	next = append(next, current[:index]...)
	return append(next, current[index+1:]...)
}

// Parse splits comma or whitespace separated input into a tag list, applying
// the same rules as Add. Invalid entries are reported together.
func Parse(input string) ([]string, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	var errs []error
	for _, field := range fields {
		next, err := Add(out, field)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = next
	}
	return out, errors.Join(errs...)
}

// Slugify turns free text into a tag slug the way the server does.
func Slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = whitespace.ReplaceAllString(text, "-")
	return slugStrip.ReplaceAllString(text, "")
}
