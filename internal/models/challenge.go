package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingInterval is the sentinel interval of a challenge that has been
// declared but not yet committed to a spot.
const PendingInterval = -1

// Challenge represents one non-active player contesting the active player's
// placement. At most one challenge exists per player per turn; it is created
// with PendingInterval and updated in place once the player commits.
type Challenge struct {
	ID            uuid.UUID  `json:"id"`
	TurnID        uuid.UUID  `json:"turn_id"`
	PlayerID      uuid.UUID  `json:"player_id"`
	IntervalIndex int        `json:"interval_index"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Committed reports whether the challenger has locked in an interval.
func (c *Challenge) Committed() bool {
	return c.IntervalIndex != PendingInterval
}
