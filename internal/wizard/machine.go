// Package wizard drives the multi-step cat profile flow: five input steps,
// a results step, and resumption across the external sign-in redirect.
package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/cathealth/cathealth-backend/internal/domain/cat"
	"github.com/cathealth/cathealth-backend/internal/domain/wellness"
	"github.com/cathealth/cathealth-backend/internal/formstate"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/apierr"
	"github.com/cathealth/cathealth-backend/internal/services"
)

const (
	// FirstStep through FinalInputStep collect the profile; ResultStep
	// shows the generated plan.
	FirstStep      = 1
	FinalInputStep = 5
	ResultStep     = 6
)

// requiredField is one per-step gate. Adding a rule here is all it takes to
// make another field mandatory.
type requiredField struct {
	name    string
	present func(p cat.Profile) bool
}

var stepRules = map[int][]requiredField{
	FirstStep: {
		{name: "catName", present: func(p cat.Profile) bool { return p.HasName() }},
	},
}

// State is the wizard as reported to the client.
type State struct {
	Position   int                     `json:"position"`
	Profile    cat.Profile             `json:"profile"`
	Plan       *wellness.GeneratedPlan `json:"plan,omitempty"`
	Submitting bool                    `json:"submitting"`
	Notice     string                  `json:"notice,omitempty"`
}

// Machine owns one wizard session. All transitions hold the mutex; the plan
// submission itself runs unlocked so other calls can observe Submitting.
type Machine struct {
	log       *logger.Logger
	sessionID string
	auth      services.AuthSession
	plans     services.PlanService
	store     formstate.Store

	mu         sync.Mutex
	profile    cat.Profile
	position   int
	plan       *wellness.GeneratedPlan
	submitting bool
	epoch      int
	notice     string
}

func NewMachine(log *logger.Logger, sessionID string, auth services.AuthSession, plans services.PlanService, store formstate.Store) *Machine {
	return &Machine{
		log:       log.With("service", "WizardMachine", "session_id", sessionID),
		sessionID: sessionID,
		auth:      auth,
		plans:     plans,
		store:     store,
		position:  FirstStep,
	}
}

// State reports the current machine state. A session that expired while the
// results were open drops the caller back to the final input step.
func (m *Machine) State(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.position == ResultStep {
		if _, err := m.auth.Current(ctx); err != nil {
			m.position = FinalInputStep
			m.plan = nil
			m.notice = "Your session has expired. Please sign in again to view your results."
		}
	}

	state := State{
		Position:   m.position,
		Profile:    m.profile,
		Plan:       m.plan,
		Submitting: m.submitting,
		Notice:     m.notice,
	}
	m.notice = ""
	return state
}

func (m *Machine) Profile() cat.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// SetProfile replaces the accumulated profile; handlers merge partial
// updates onto a copy before calling it.
func (m *Machine) SetProfile(p cat.Profile) {
	m.mu.Lock()
	m.profile = p
	m.mu.Unlock()
}

// Next advances one step when the current step's required fields are filled.
func (m *Machine) Next(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.position >= FinalInputStep {
		return apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("already at the final step"))
	}
	for _, rule := range stepRules[m.position] {
		if !rule.present(m.profile) {
			return apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("%s is required", rule.name))
		}
	}
	m.position++
	return nil
}

// Prev steps back; it never validates.
func (m *Machine) Prev(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.position > FirstStep {
		m.position--
	}
	return nil
}

// Submit generates the plan from the final input step. The session is
// re-verified at call time; a stale "signed in" from minutes ago does not
// count. At most one submission runs at a time.
func (m *Machine) Submit(ctx context.Context) (*wellness.GeneratedPlan, error) {
	m.mu.Lock()
	if m.position != FinalInputStep {
		m.mu.Unlock()
		return nil, apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("submission is only possible from step %d", FinalInputStep))
	}
	if m.submitting {
		m.mu.Unlock()
		return nil, apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("a submission is already in progress"))
	}

	ident, err := m.auth.Current(ctx)
	if err != nil || ident == nil {
		m.mu.Unlock()
		return nil, apierr.Unauthorized(fmt.Errorf("sign in to generate a wellness plan"))
	}

	m.submitting = true
	profile := m.profile
	epoch := m.epoch
	m.mu.Unlock()

	plan, genErr := m.plans.Generate(ctx, ident, profile)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false

	if m.epoch != epoch {
		// The machine was reset mid-flight; the result belongs to nobody.
		return nil, apierr.BadRequest(apierr.CodeValidation, fmt.Errorf("submission was abandoned"))
	}
	if genErr != nil {
		return nil, genErr
	}

	m.plan = plan
	m.position = ResultStep
	m.store.Clear(ctx, m.sessionID)
	return plan, nil
}

// Reset returns to the first step and clears everything, including the
// persisted snapshot.
func (m *Machine) Reset(ctx context.Context) {
	m.mu.Lock()
	m.position = FirstStep
	m.profile = cat.Profile{}
	m.plan = nil
	m.notice = ""
	m.epoch++
	m.mu.Unlock()
	m.store.Clear(ctx, m.sessionID)
}

// HasPlan reports whether a plan has been generated for this session.
func (m *Machine) HasPlan() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plan != nil
}

// invalidatePlan drops generated results, used when the session flips to
// unauthenticated.
func (m *Machine) invalidatePlan() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plan = nil
	if m.position == ResultStep {
		m.position = FinalInputStep
	}
}

// restore applies a persisted snapshot, clamping the position into range.
func (m *Machine) restore(snap formstate.Snapshot) {
	pos := snap.Position
	if pos < FirstStep {
		pos = FirstStep
	}
	if pos > FinalInputStep {
		pos = FinalInputStep
	}
	m.mu.Lock()
	m.profile = snap.Profile
	m.position = pos
	m.mu.Unlock()
}
