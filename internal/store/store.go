// Package store defines the record-level contract with the shared game
// store. The store is the single shared mutable resource between clients:
// rows are never locked, reads return the latest committed row state, and
// no cross-row transaction is assumed.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/FariaVasco/cinescenes/internal/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateCode is returned when a game join code collides with an
	// existing game.
	ErrDuplicateCode = errors.New("join code already in use")
)

// Store is the persistence contract the game core runs against.
type Store interface {
	CreateGame(ctx context.Context, game *models.Game) error
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetGameByCode(ctx context.Context, code string) (*models.Game, error)
	UpdateGameStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error

	CreatePlayer(ctx context.Context, player *models.Player) error
	// ListPlayersByGame returns players ordered by join time; this order is
	// the turn rotation order.
	ListPlayersByGame(ctx context.Context, gameID uuid.UUID) ([]models.Player, error)
	UpdatePlayerTimeline(ctx context.Context, id uuid.UUID, timeline []int) error

	CreateTurn(ctx context.Context, turn *models.Turn) error
	// LatestTurnByGame returns the most recently created turn of the game,
	// which is by definition the current one. ErrNotFound before the first
	// turn exists.
	LatestTurnByGame(ctx context.Context, gameID uuid.UUID) (*models.Turn, error)
	ListTurnsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Turn, error)
	UpdateTurnStatus(ctx context.Context, id uuid.UUID, status models.TurnStatus) error
	// UpdateTurnPlacement writes the placed interval and the status move out
	// of PLACING in a single row update.
	UpdateTurnPlacement(ctx context.Context, id uuid.UUID, interval int, status models.TurnStatus) error

	CreateChallenge(ctx context.Context, challenge *models.Challenge) error
	ListChallengesByTurn(ctx context.Context, turnID uuid.UUID) ([]models.Challenge, error)
	UpdateChallengeInterval(ctx context.Context, id uuid.UUID, interval int) error

	GetMovie(ctx context.Context, id uuid.UUID) (*models.Movie, error)
	ListActiveMovies(ctx context.Context) ([]models.Movie, error)
}
