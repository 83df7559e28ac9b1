package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus defines the lifecycle status of a game.
type GameStatus string

const (
	GameStatusLobby    GameStatus = "LOBBY"
	GameStatusActive   GameStatus = "ACTIVE"
	GameStatusFinished GameStatus = "FINISHED"
)

// GameMode tags how timelines are played.
type GameMode string

const (
	GameModePersonal GameMode = "PERSONAL"
	GameModeShared   GameMode = "SHARED"
)

// Game represents one hosted game instance. Code is the human-shareable
// join code, stored uppercase and unique across games.
type Game struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Status    GameStatus `json:"status"`
	Mode      GameMode   `json:"mode"`
	CreatedAt time.Time  `json:"created_at"`
}
