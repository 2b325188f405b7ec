// Package session persists the bearer token between runs of the client.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"gosshub/client/internal/state"
)

// record is what every backend stores for a profile.
type record struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}

func encode(token string, expiresAt time.Time) ([]byte, error) {
	data, err := json.Marshal(record{Token: token, ExpiresAt: expiresAt, SavedAt: time.Now().UTC()})
	if err != nil {
		return nil, fmt.Errorf("marshal token record: %w", err)
	}
	return data, nil
}

func decode(data []byte, now time.Time) (string, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("unmarshal token record: %w", err)
	}
	if rec.Token == "" {
		return "", state.ErrNoToken
	}
	if !rec.ExpiresAt.IsZero() && !now.Before(rec.ExpiresAt) {
		return "", state.ErrNoToken
	}
	return rec.Token, nil
}

var (
	_ state.TokenStore = (*RedisStore)(nil)
	_ state.TokenStore = (*FileStore)(nil)
)
