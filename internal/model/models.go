// Package model holds the wire types returned by the GossHub API.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID identifies comments and users. The API emits integers, older payloads
// use strings; both decode to the same value.
type ID string

func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) String() string {
	return string(id)
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// Time accepts both ISO 8601 and the RFC 1123 dates Flask's jsonify produces.
type Time struct {
	time.Time
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

func (t *Time) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode time: %w", err)
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, *raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("decode time: unsupported format %q", *raw)
}

// Comment is one entry of the flat comment list embedded in a document.
// An empty Author means the account was deleted.
type Comment struct {
	ID       ID     `json:"id"`
	ParentID ID     `json:"parent_id"`
	Author   string `json:"username"`
	Body     string `json:"body"`
	Date     Time   `json:"date"`
}

// Transformation is an immutable, hash-addressed snapshot of a document.
type Transformation struct {
	Hash   string   `json:"hash"`
	Body   string   `json:"body"`
	Tags   []string `json:"tags"`
	Author string   `json:"username"`
	Date   Time     `json:"date"`
}

// Document is the payload of a single-document fetch. Transformations are
// ordered newest first.
type Document struct {
	UUID            string           `json:"uuid"`
	CreatedBy       string           `json:"created_by,omitempty"`
	Watching        bool             `json:"watching,omitempty"`
	Transformations []Transformation `json:"transformations"`
	Comments        []Comment        `json:"comments"`
}

// Latest returns the current transformation.
func (d Document) Latest() (Transformation, bool) {
	if len(d.Transformations) == 0 {
		return Transformation{}, false
	}
	return d.Transformations[0], true
}

type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count"`
}

type User struct {
	ID         ID     `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	JoinDate   Time   `json:"join_date"`
	IsAdmin    bool   `json:"is_admin"`
	IsVerified bool   `json:"is_verified"`
}

type Page struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type LogEntry struct {
	Body       string `json:"body"`
	Date       Time   `json:"date"`
	Visibility string `json:"visibility"`
	DocumentID ID     `json:"id"`
}

// DisplayName renders a possibly deleted author.
func DisplayName(author string) string {
	if strings.TrimSpace(author) == "" {
		return "Deleted user"
	}
	return author
}
