package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a participant in a game. Timeline holds the years of
// movies the player has won, always sorted ascending. Join order (JoinedAt)
// is the turn rotation order.
type Player struct {
	ID       uuid.UUID `json:"id"`
	GameID   uuid.UUID `json:"game_id"`
	Name     string    `json:"name"`
	Timeline []int     `json:"timeline"`
	Coins    int       `json:"coins"`
	JoinedAt time.Time `json:"joined_at"`
}
