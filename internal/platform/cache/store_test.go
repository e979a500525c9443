package cache

import (
	"context"
	"testing"
)

func TestStore_SetGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore[[]byte]()

	if _, ok := store.Get(ctx, "roster_2024.csv"); ok {
		t.Fatalf("expected miss on empty store")
	}

	store.Set(ctx, "roster_2024.csv", []byte("player_id\n00-1\n"))
	got, ok := store.Get(ctx, "roster_2024.csv")
	if !ok || string(got) != "player_id\n00-1\n" {
		t.Fatalf("unexpected cached value: %q ok=%v", got, ok)
	}

	store.Set(ctx, "roster_2024.csv", []byte("player_id\n00-2\n"))
	if got, _ := store.Get(ctx, "roster_2024.csv"); string(got) != "player_id\n00-2\n" {
		t.Fatalf("expected overwrite, got %q", got)
	}
}

func TestStore_IgnoresEmptyKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore[int]()

	store.Set(ctx, "", 7)
	if _, ok := store.Get(ctx, ""); ok {
		t.Fatalf("empty keys must not be stored")
	}
	if len(store.entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(store.entries))
	}
}

func TestStore_NilIsAlwaysMiss(t *testing.T) {
	t.Parallel()

	var store *Store[string]
	store.Set(context.Background(), "k", "v")
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("nil store must never hit")
	}
}
