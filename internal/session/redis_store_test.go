package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"gosshub/client/internal/state"
)

func setupTestRedis(t *testing.T, profile string) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+s.Addr(), profile)
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	store, _ := setupTestRedis(t, "")
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
	if store.key() != "gosshub:token:default" {
		t.Errorf("unexpected key %q", store.key())
	}
}

func TestNewRedisStoreBadURL(t *testing.T) {
	if _, err := NewRedisStore("::not a url", "x"); err == nil {
		t.Fatal("expected error for malformed url")
	}
}

func TestSaveAndLoadToken(t *testing.T) {
	store, s := setupTestRedis(t, "work")
	ctx := context.Background()

	if err := store.Save(ctx, "tok-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != "tok-1" {
		t.Errorf("expected tok-1, got %s", got)
	}

	ttl := s.TTL("gosshub:token:work")
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("unexpected ttl %v", ttl)
	}
}

func TestTokenWithoutExpiryUsesDefaultTTL(t *testing.T) {
	store, s := setupTestRedis(t, "work")
	if err := store.Save(context.Background(), "tok", time.Time{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if ttl := s.TTL("gosshub:token:work"); ttl != DefaultTTL {
		t.Errorf("expected default ttl, got %v", ttl)
	}
}

func TestLoadExpiredToken(t *testing.T) {
	store, s := setupTestRedis(t, "work")
	ctx := context.Background()

	if err := store.Save(ctx, "tok", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.FastForward(2 * time.Minute)

	if _, err := store.Load(ctx); !errors.Is(err, state.ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
}

func TestClearToken(t *testing.T) {
	store, _ := setupTestRedis(t, "work")
	ctx := context.Background()

	if err := store.Save(ctx, "tok", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, state.ErrNoToken) {
		t.Errorf("expected ErrNoToken after clear, got %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Errorf("clearing twice should not fail: %v", err)
	}
}

func TestProfilesAreIsolated(t *testing.T) {
	s := miniredis.RunT(t)
	ctx := context.Background()
	work, err := NewRedisStore("redis://"+s.Addr(), "work")
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer work.Close()
	home, err := NewRedisStore("redis://"+s.Addr(), "home")
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer home.Close()

	if err := work.Save(ctx, "work-token", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := home.Load(ctx); !errors.Is(err, state.ErrNoToken) {
		t.Errorf("home profile should be empty, got %v", err)
	}
	if err := home.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got, err := work.Load(ctx); err != nil || got != "work-token" {
		t.Errorf("work token lost: %q %v", got, err)
	}
}
