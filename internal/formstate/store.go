// Package formstate persists in-progress wizard input so it survives the
// redirect round trip through the external authenticator.
package formstate

import (
	"context"

	"github.com/cathealth/cathealth-backend/internal/domain/cat"
)

// Snapshot is one saved wizard slot: the profile as entered so far plus the
// step the user was on.
type Snapshot struct {
	Profile  cat.Profile `json:"profile"`
	Position int         `json:"position"`
}

// Store holds at most one Snapshot per session. Save is best-effort and never
// surfaces an error to the caller; a full or failing backend silently drops
// the write. Load reports ok=false for absent or unreadable slots, and an
// unreadable slot is cleared so it cannot shadow later saves.
type Store interface {
	Save(ctx context.Context, sessionID string, snap Snapshot)
	Load(ctx context.Context, sessionID string) (Snapshot, bool)
	Clear(ctx context.Context, sessionID string)
}
