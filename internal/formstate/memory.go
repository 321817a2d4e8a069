package formstate

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
)

type memoryStore struct {
	log *logger.Logger

	mu    sync.Mutex
	slots map[string][]byte
}

// NewMemoryStore is the non-durable fallback used when REDIS_ADDR is unset,
// and the store of choice in tests.
func NewMemoryStore(log *logger.Logger) Store {
	return &memoryStore{
		log:   log.With("service", "FormStateMemoryStore"),
		slots: map[string][]byte{},
	}
}

func (s *memoryStore) Save(_ context.Context, sessionID string, snap Snapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		s.log.Warn("Form state save dropped", "session_id", sessionID, "error", err)
		return
	}
	s.mu.Lock()
	s.slots[sessionID] = raw
	s.mu.Unlock()
}

func (s *memoryStore) Load(_ context.Context, sessionID string) (Snapshot, bool) {
	s.mu.Lock()
	raw, ok := s.slots[sessionID]
	s.mu.Unlock()
	if !ok {
		return Snapshot{}, false
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.log.Warn("Form state slot unreadable, clearing", "session_id", sessionID, "error", err)
		s.mu.Lock()
		delete(s.slots, sessionID)
		s.mu.Unlock()
		return Snapshot{}, false
	}
	return snap, true
}

func (s *memoryStore) Clear(_ context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.slots, sessionID)
	s.mu.Unlock()
}

// seed writes raw bytes into a slot, bypassing serialization.
func (s *memoryStore) seed(sessionID string, raw []byte) {
	s.mu.Lock()
	s.slots[sessionID] = raw
	s.mu.Unlock()
}
