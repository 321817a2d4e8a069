package wizard

import (
	"sync"
	"time"

	"github.com/cathealth/cathealth-backend/internal/formstate"
	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
	"github.com/cathealth/cathealth-backend/internal/platform/envutil"
	"github.com/cathealth/cathealth-backend/internal/services"
)

// Session bundles everything one wizard client owns: its auth session, the
// step machine, and the resume controller bound to both.
type Session struct {
	Auth    *services.TokenSession
	Machine *Machine
	Resume  *ResumeController

	lastSeen time.Time
}

// Manager hands out wizard sessions keyed by the client session id,
// creating them lazily and evicting idle ones.
type Manager struct {
	log      *logger.Logger
	verifier services.TokenVerifier
	plans    services.PlanService
	store    formstate.Store
	idleTTL  time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(log *logger.Logger, verifier services.TokenVerifier, plans services.PlanService, store formstate.Store) *Manager {
	m := &Manager{
		log:      log.With("service", "WizardManager"),
		verifier: verifier,
		plans:    plans,
		store:    store,
		idleTTL:  envutil.Duration("WIZARD_SESSION_IDLE_TTL", 24*time.Hour),
		sessions: map[string]*Session{},
	}
	go m.sweep()
	return m
}

// Session returns the wizard session for the given id, creating it on first
// use.
func (m *Manager) Session(sessionID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		s.lastSeen = time.Now()
		return s
	}

	auth := services.NewTokenSession(m.verifier)
	machine := NewMachine(m.log, sessionID, auth, m.plans, m.store)
	s := &Session{
		Auth:     auth,
		Machine:  machine,
		Resume:   NewResumeController(m.log, sessionID, machine, m.store, auth),
		lastSeen: time.Now(),
	}
	m.sessions[sessionID] = s
	return s
}

func (m *Manager) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-m.idleTTL)
		m.mu.Lock()
		for id, s := range m.sessions {
			if s.lastSeen.Before(cutoff) {
				delete(m.sessions, id)
			}
		}
		m.mu.Unlock()
	}
}
