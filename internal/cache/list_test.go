package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestListCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	payload := []byte(`[{"id":1}]`)

	if got := c.GetList(ctx, "projects", 7); got != nil {
		t.Fatalf("expected miss, got %q", got)
	}

	if err := c.SetList(ctx, "projects", 7, payload); err != nil {
		t.Fatalf("set list: %v", err)
	}

	if got := c.GetList(ctx, "projects", 7); !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}

	// Entries are scoped per caller.
	if got := c.GetList(ctx, "projects", 8); got != nil {
		t.Fatalf("expected miss for other user, got %q", got)
	}
	if got := c.GetList(ctx, "students", 7); got != nil {
		t.Fatalf("expected miss for other entity, got %q", got)
	}
}

func TestListCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if err := c.SetList(ctx, "tasks", 3, []byte(`[]`)); err != nil {
		t.Fatalf("set list: %v", err)
	}
	if err := c.InvalidateList(ctx, "tasks", 3); err != nil {
		t.Fatalf("invalidate list: %v", err)
	}
	if got := c.GetList(ctx, "tasks", 3); got != nil {
		t.Fatalf("expected miss after invalidation, got %q", got)
	}
}

func TestListCache_EntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.SetList(ctx, "projects", 1, []byte(`[]`)); err != nil {
		t.Fatalf("set list: %v", err)
	}

	mr.FastForward(listCacheTTL + time.Second)

	if got := c.GetList(ctx, "projects", 1); got != nil {
		t.Fatalf("expected entry to expire, got %q", got)
	}
}
