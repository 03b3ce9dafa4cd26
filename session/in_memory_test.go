package session

import (
	"errors"
	"testing"

	"github.com/cognovo/differential/core"
)

func TestInMemoryStore_PutAndGet(t *testing.T) {
	store := NewInMemoryStore()
	sess := core.NewSession("input", nil)

	if err := store.Put(sess); err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got != sess {
		t.Fatal("store should hand back the live session pointer")
	}
}

func TestInMemoryStore_GetUnknown(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Get("missing"); !errors.Is(err, core.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestInMemoryStore_ListFiltersByStatus(t *testing.T) {
	store := NewInMemoryStore()
	active := core.NewSession("a", nil)
	completed := core.NewSession("b", nil)
	_ = completed.Complete(&core.Synthesis{SessionID: completed.ID})
	_ = store.Put(active)
	_ = store.Put(completed)

	if got := len(store.List("", 0)); got != 2 {
		t.Fatalf("expected 2 sessions, got %d", got)
	}
	done := store.List(core.SessionCompleted, 0)
	if len(done) != 1 || done[0].ID != completed.ID {
		t.Fatalf("status filter wrong: %v", done)
	}
	if got := len(store.List("", 1)); got != 1 {
		t.Fatalf("limit not applied, got %d", got)
	}
}

func TestInMemoryStore_Stats(t *testing.T) {
	store := NewInMemoryStore()
	_ = store.Put(core.NewSession("a", nil))
	failed := core.NewSession("b", nil)
	_ = failed.Fail(core.Failure{Phase: core.PhaseChallenge, Round: 1, Message: "x"})
	_ = store.Put(failed)

	stats := store.Stats()
	if stats["total"] != 2 || stats["active"] != 1 || stats["failed"] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}
