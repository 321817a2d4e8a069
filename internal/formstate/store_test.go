package formstate

import (
	"context"
	"testing"

	"github.com/cathealth/cathealth-backend/internal/domain/cat"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestMemoryStore_SaveLoadClear(t *testing.T) {
	store := NewMemoryStore(testLogger(t))
	ctx := context.Background()

	snap := Snapshot{
		Profile:  cat.Profile{Name: "Misha", Age: "3 years", BehaviorIssues: []string{"scratching"}},
		Position: 5,
	}
	store.Save(ctx, "sess-1", snap)

	got, ok := store.Load(ctx, "sess-1")
	if !ok {
		t.Fatalf("expected saved slot")
	}
	if got.Position != 5 || got.Profile.Name != "Misha" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if len(got.Profile.BehaviorIssues) != 1 || got.Profile.BehaviorIssues[0] != "scratching" {
		t.Fatalf("behavior issues lost: %+v", got.Profile.BehaviorIssues)
	}

	store.Clear(ctx, "sess-1")
	if _, ok := store.Load(ctx, "sess-1"); ok {
		t.Fatalf("expected cleared slot to be absent")
	}
}

func TestMemoryStore_LoadMissingSession(t *testing.T) {
	store := NewMemoryStore(testLogger(t))
	if _, ok := store.Load(context.Background(), "nope"); ok {
		t.Fatalf("expected absent slot")
	}
}

func TestMemoryStore_SecondSaveWins(t *testing.T) {
	store := NewMemoryStore(testLogger(t))
	ctx := context.Background()

	store.Save(ctx, "sess-1", Snapshot{Profile: cat.Profile{Name: "Misha"}, Position: 2})
	store.Save(ctx, "sess-1", Snapshot{Profile: cat.Profile{Name: "Tuna"}, Position: 4})

	got, ok := store.Load(ctx, "sess-1")
	if !ok {
		t.Fatalf("expected slot")
	}
	if got.Profile.Name != "Tuna" || got.Position != 4 {
		t.Fatalf("expected last save to win, got %+v", got)
	}
}

func TestMemoryStore_CorruptSlotTreatedAsAbsentAndCleared(t *testing.T) {
	raw := NewMemoryStore(testLogger(t))
	store := raw.(*memoryStore)
	ctx := context.Background()

	store.seed("sess-1", []byte(`{"profile": not json`))

	if _, ok := store.Load(ctx, "sess-1"); ok {
		t.Fatalf("corrupt slot must read as absent")
	}

	// The bad bytes are gone: a fresh save then load works.
	store.Save(ctx, "sess-1", Snapshot{Profile: cat.Profile{Name: "Misha"}, Position: 1})
	if got, ok := store.Load(ctx, "sess-1"); !ok || got.Profile.Name != "Misha" {
		t.Fatalf("expected fresh save after corruption, got ok=%v %+v", ok, got)
	}
}

func TestMemoryStore_SessionsAreIsolated(t *testing.T) {
	store := NewMemoryStore(testLogger(t))
	ctx := context.Background()

	store.Save(ctx, "sess-a", Snapshot{Profile: cat.Profile{Name: "Misha"}, Position: 3})
	store.Save(ctx, "sess-b", Snapshot{Profile: cat.Profile{Name: "Tuna"}, Position: 1})
	store.Clear(ctx, "sess-a")

	if _, ok := store.Load(ctx, "sess-a"); ok {
		t.Fatalf("sess-a should be cleared")
	}
	if got, ok := store.Load(ctx, "sess-b"); !ok || got.Profile.Name != "Tuna" {
		t.Fatalf("sess-b should be untouched, got ok=%v %+v", ok, got)
	}
}
