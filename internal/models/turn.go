package models

import (
	"time"

	"github.com/google/uuid"
)

// TurnStatus defines the phase of a turn.
type TurnStatus string

const (
	TurnStatusDrawing     TurnStatus = "DRAWING"
	TurnStatusPlacing     TurnStatus = "PLACING"
	TurnStatusChallenging TurnStatus = "CHALLENGING"
	TurnStatusRevealing   TurnStatus = "REVEALING"
	TurnStatusComplete    TurnStatus = "COMPLETE"
)

// Turn represents one draw of a movie by one player. A turn is never
// re-pointed at a different movie; status and PlacedInterval are its only
// mutable fields. The current turn of a game is the most recently created
// one.
type Turn struct {
	ID             uuid.UUID  `json:"id"`
	GameID         uuid.UUID  `json:"game_id"`
	PlayerID       uuid.UUID  `json:"player_id"`
	MovieID        uuid.UUID  `json:"movie_id"`
	PlacedInterval *int       `json:"placed_interval,omitempty"`
	Status         TurnStatus `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
}
