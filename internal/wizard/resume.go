package wizard

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cathealth/cathealth-backend/internal/formstate"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/apierr"
	"github.com/cathealth/cathealth-backend/internal/platform/envutil"
	"github.com/cathealth/cathealth-backend/internal/services"
)

// ResumeController carries wizard progress across the external sign-in
// redirect. SignIn persists the snapshot and hands out a single-use marker;
// Resume consumes the marker and restores the machine, auto-submitting when
// the user had already reached the final input step.
type ResumeController struct {
	log       *logger.Logger
	sessionID string
	machine   *Machine
	store     formstate.Store
	auth      services.AuthSession

	signInURL   string
	callbackURL string
	settle      time.Duration

	mu     sync.Mutex
	marker string
}

func NewResumeController(log *logger.Logger, sessionID string, machine *Machine, store formstate.Store, auth services.AuthSession) *ResumeController {
	c := &ResumeController{
		log:         log.With("service", "ResumeController", "session_id", sessionID),
		sessionID:   sessionID,
		machine:     machine,
		store:       store,
		auth:        auth,
		signInURL:   envutil.String("AUTH_SIGNIN_URL", "https://auth.cathealth.app/signin"),
		callbackURL: envutil.String("WIZARD_CALLBACK_URL", "http://localhost:3000/cat-wizard"),
		settle:      envutil.Duration("WIZARD_RESUME_SETTLE", time.Second),
	}

	auth.OnChange(func(authenticated bool) {
		if !authenticated {
			// Results are gone the moment the session is.
			c.machine.invalidatePlan()
			return
		}
		c.mu.Lock()
		pending := c.marker != ""
		c.mu.Unlock()
		if !pending {
			// Ordinary sign-in, not a wizard round trip: stale snapshots
			// must not resurrect later.
			c.store.Clear(context.Background(), c.sessionID)
		}
	})
	return c
}

// SignIn saves the current progress unconditionally and returns the external
// sign-in URL whose callback carries the resume marker.
func (c *ResumeController) SignIn(ctx context.Context) string {
	state := c.machine.State(ctx)
	c.store.Save(ctx, c.sessionID, formstate.Snapshot{Profile: state.Profile, Position: state.Position})

	marker := uuid.NewString()
	c.mu.Lock()
	c.marker = marker
	c.mu.Unlock()

	callback := fmt.Sprintf("%s?wizard_resume=%s", c.callbackURL, marker)
	return fmt.Sprintf("%s?callback_url=%s", c.signInURL, url.QueryEscape(callback))
}

// Resume consumes the marker and restores the persisted snapshot. The marker
// is valid exactly once; a replayed callback is rejected.
func (c *ResumeController) Resume(ctx context.Context, marker string) error {
	c.mu.Lock()
	valid := marker != "" && marker == c.marker
	c.marker = ""
	c.mu.Unlock()
	if !valid {
		return apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("invalid or already used resume marker"))
	}

	if _, err := c.auth.Current(ctx); err != nil {
		return apierr.Unauthorized(fmt.Errorf("sign-in did not complete"))
	}

	if c.machine.HasPlan() {
		// Nothing to redo; drop the snapshot so it cannot replay.
		c.store.Clear(ctx, c.sessionID)
		return nil
	}

	snap, ok := c.store.Load(ctx, c.sessionID)
	if !ok {
		return nil
	}
	c.machine.restore(snap)
	c.log.Info("Wizard state restored", "position", snap.Position)

	if snap.Position == FinalInputStep {
		c.autoSubmit(ctx)
	}
	return nil
}

// autoSubmit finishes a submission interrupted by the sign-in redirect. The
// settle delay lets the freshly restored session propagate; with no delay
// configured the submission runs inline.
func (c *ResumeController) autoSubmit(ctx context.Context) {
	submit := func(ctx context.Context) {
		if _, err := c.machine.Submit(ctx); err != nil {
			c.log.Warn("Auto-submit after resume failed", "error", err)
		}
	}

	if c.settle <= 0 {
		submit(ctx)
		return
	}
	go func() {
		time.Sleep(c.settle)
		submit(context.Background())
	}()
}
