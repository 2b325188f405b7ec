package store

import "time"

// Summary is one row of the mirrored document list.
type Summary struct {
	UUID       string
	CreatedBy  string
	LatestHash string
	Body       string
	Tags       []string
	Author     string
	Versions   int
	Comments   int
	UpdatedAt  time.Time
	SyncedAt   time.Time
}

// CommentRecord is a mirrored comment flattened with its document UUID.
type CommentRecord struct {
	DocumentUUID string
	ID           string
	Position     int
	ParentID     string
	Author       string
	Body         string
	CreatedAt    time.Time
}
