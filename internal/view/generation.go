// Package view holds the session scoped state behind each screen of the
// client: an open document, document listings, the admin panel and the
// account page. Views fetch through the API and apply a response only if no
// newer fetch has started since.
package view

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStale is returned when a response arrives after a newer request of the
// same view has been issued. The response is discarded.
var ErrStale = errors.New("stale response discarded")

// ErrClosed is returned by a view whose session has ended.
var ErrClosed = errors.New("view closed")

// Generation hands out fetch tickets. Only the latest ticket is current.
type Generation struct {
	n atomic.Uint64
}

func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

func (g *Generation) Current(ticket uint64) bool {
	return g.n.Load() == ticket
}

// Apply runs fn under mu if ticket is still current and reports whether it
// ran. Checking and applying under the same lock keeps an older response
// from landing after a newer one.
func (g *Generation) Apply(mu sync.Locker, ticket uint64, fn func()) bool {
	mu.Lock()
	defer mu.Unlock()
	if !g.Current(ticket) {
		return false
	}
	fn()
	return true
}
