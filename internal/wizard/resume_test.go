package wizard

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/cathealth/cathealth-backend/internal/domain/cat"
	"github.com/cathealth/cathealth-backend/internal/formstate"
	"github.com/cathealth/cathealth-backend/internal/platform/apierr"
	"github.com/cathealth/cathealth-backend/internal/services"
)

func newTestController(t *testing.T, auth services.AuthSession, plans services.PlanService) (*ResumeController, *Machine, formstate.Store) {
	t.Helper()
	t.Setenv("WIZARD_RESUME_SETTLE", "0")
	store := formstate.NewMemoryStore(testLogger(t))
	m := NewMachine(testLogger(t), "sess-1", auth, plans, store)
	c := NewResumeController(testLogger(t), "sess-1", m, store, auth)
	return c, m, store
}

func markerFromURL(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse sign-in url: %v", err)
	}
	callback, err := url.Parse(u.Query().Get("callback_url"))
	if err != nil {
		t.Fatalf("parse callback url: %v", err)
	}
	marker := callback.Query().Get("wizard_resume")
	if marker == "" {
		t.Fatalf("callback carries no resume marker: %s", raw)
	}
	return marker
}

func TestSignInSavesSnapshotAndAppendsMarker(t *testing.T) {
	ctx := context.Background()
	c, m, store := newTestController(t, &fakeAuth{}, &fakePlans{})
	m.SetProfile(cat.Profile{Name: "Misha", Age: "3"})
	_ = m.Next(ctx)
	_ = m.Next(ctx)

	raw := c.SignIn(ctx)
	_ = markerFromURL(t, raw)

	snap, ok := store.Load(ctx, "sess-1")
	if !ok {
		t.Fatalf("sign-in did not persist the snapshot")
	}
	if snap.Position != 3 || snap.Profile.Name != "Misha" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestResumeRestoresMidwayPosition(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{}
	plans := &fakePlans{plan: generatedPlan()}
	c, m, _ := newTestController(t, auth, plans)
	m.SetProfile(cat.Profile{Name: "Misha"})
	_ = m.Next(ctx)
	_ = m.Next(ctx)

	marker := markerFromURL(t, c.SignIn(ctx))
	auth.set(authedIdentity())

	if err := c.Resume(ctx, marker); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got := m.State(ctx).Position; got != 3 {
		t.Fatalf("position = %d, want 3", got)
	}
	if plans.calls != 0 {
		t.Fatalf("resume below the final step must not submit")
	}
}

func TestResumeFromFinalStepAutoSubmits(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{}
	plans := &fakePlans{plan: generatedPlan()}
	c, m, store := newTestController(t, auth, plans)
	advanceToFinalStep(t, m)

	marker := markerFromURL(t, c.SignIn(ctx))
	auth.set(authedIdentity())

	if err := c.Resume(ctx, marker); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	state := m.State(ctx)
	if state.Position != ResultStep {
		t.Fatalf("position = %d, want %d", state.Position, ResultStep)
	}
	if state.Plan == nil {
		t.Fatalf("expected an auto-submitted plan")
	}
	if _, ok := store.Load(ctx, "sess-1"); ok {
		t.Fatalf("snapshot should be cleared after the auto-submit")
	}
}

func TestResumeMarkerIsSingleUse(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{}
	c, m, _ := newTestController(t, auth, &fakePlans{plan: generatedPlan()})
	m.SetProfile(cat.Profile{Name: "Misha"})

	marker := markerFromURL(t, c.SignIn(ctx))
	auth.set(authedIdentity())

	if err := c.Resume(ctx, marker); err != nil {
		t.Fatalf("first Resume: %v", err)
	}
	if err := c.Resume(ctx, marker); err == nil {
		t.Fatalf("replayed marker should be rejected")
	}
	if err := c.Resume(ctx, "made-up"); err == nil {
		t.Fatalf("unknown marker should be rejected")
	}
}

func TestResumeWithoutCompletedSignIn(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{}
	c, m, _ := newTestController(t, auth, &fakePlans{})
	m.SetProfile(cat.Profile{Name: "Misha"})

	marker := markerFromURL(t, c.SignIn(ctx))

	err := c.Resume(ctx, marker)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) || apiErr.Code != apierr.CodeAuthRequired {
		t.Fatalf("expected auth required, got %v", err)
	}
}

func TestResumeWithPlanAlreadyGenerated(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{ident: authedIdentity()}
	plans := &fakePlans{plan: generatedPlan()}
	c, m, store := newTestController(t, auth, plans)
	advanceToFinalStep(t, m)
	if _, err := m.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	marker := markerFromURL(t, c.SignIn(ctx))
	if err := c.Resume(ctx, marker); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if _, ok := store.Load(ctx, "sess-1"); ok {
		t.Fatalf("snapshot should be cleared when a plan already exists")
	}
	if got := m.State(ctx).Position; got != ResultStep {
		t.Fatalf("position = %d, want %d", got, ResultStep)
	}
	if plans.calls != 1 {
		t.Fatalf("plan regenerated on resume: %d calls", plans.calls)
	}
}

func TestOrdinarySignInClearsStaleSnapshot(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{}
	c, _, store := newTestController(t, auth, &fakePlans{})
	_ = c

	store.Save(ctx, "sess-1", formstate.Snapshot{Profile: cat.Profile{Name: "Misha"}, Position: 4})

	// Signing in with no resume round trip in flight discards leftovers.
	auth.set(authedIdentity())
	if _, ok := store.Load(ctx, "sess-1"); ok {
		t.Fatalf("stale snapshot survived an ordinary sign-in")
	}
}

func TestSignOutInvalidatesGeneratedPlan(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{ident: authedIdentity()}
	c, m, _ := newTestController(t, auth, &fakePlans{plan: generatedPlan()})
	_ = c
	advanceToFinalStep(t, m)
	if _, err := m.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	auth.set(nil)
	state := m.State(ctx)
	if state.Plan != nil {
		t.Fatalf("plan survived sign-out")
	}
	if state.Position != FinalInputStep {
		t.Fatalf("position = %d, want %d", state.Position, FinalInputStep)
	}
}
