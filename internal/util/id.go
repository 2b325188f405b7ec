package util

import (
	"github.com/lithammer/shortuuid/v4"
)

// NewID returns a short random id, optionally prefixed as "<prefix>_<id>".
func NewID(prefix string) string {
	id := shortuuid.New()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}

// NewRequestID tags one outgoing API request.
func NewRequestID() string {
	return NewID("req")
}
