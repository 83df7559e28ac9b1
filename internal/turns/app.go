// Package turns owns the per-turn state machine and the challenge
// resolution that grows the winner's timeline and advances play.
//
// Every action targets the current turn of a game (the most recently
// created one); a stale client acting after an advance simply fails the
// phase check and re-derives its view from the next poll.
package turns

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/FariaVasco/cinescenes/internal/models"
	"github.com/FariaVasco/cinescenes/internal/store"
)

var (
	// ErrNotActivePlayer is returned when a phase transition is attempted by
	// anyone but the turn's active player.
	ErrNotActivePlayer = errors.New("only the active player may do this")

	// ErrActivePlayerChallenge is returned when the active player tries to
	// challenge their own placement.
	ErrActivePlayerChallenge = errors.New("active player cannot challenge own turn")

	// ErrWrongPhase is returned when an action does not match the turn's
	// current status.
	ErrWrongPhase = errors.New("action not valid in current turn phase")

	// ErrAlreadyChallenged is returned when a player who already has a
	// challenge on this turn tries to create a second one.
	ErrAlreadyChallenged = errors.New("player already challenged this turn")

	// ErrInvalidInterval is returned when an interval index falls outside
	// 0..len(timeline) for the active player's timeline.
	ErrInvalidInterval = errors.New("interval index out of range")

	// ErrChallengeNotFound is returned when committing an interval for a
	// player who never declared a challenge on the turn.
	ErrChallengeNotFound = errors.New("no challenge by this player on this turn")
)

// App handles turn business logic against the shared store.
type App struct {
	store store.Store
	log   zerolog.Logger
}

// NewApp creates a new turns App.
func NewApp(st store.Store, log zerolog.Logger) *App {
	return &App{
		store: st,
		log:   log.With().Str("component", "turns").Logger(),
	}
}

// CurrentTurn retrieves the current turn of a game.
func (a *App) CurrentTurn(ctx context.Context, gameID uuid.UUID) (*models.Turn, error) {
	turn, err := a.store.LatestTurnByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current turn: %w", err)
	}
	return turn, nil
}

// StartPlacing moves the current turn from DRAWING to PLACING. Only the
// active player may start watching/placing.
func (a *App) StartPlacing(ctx context.Context, gameID, playerID uuid.UUID) error {
	turn, err := a.CurrentTurn(ctx, gameID)
	if err != nil {
		return err
	}
	if turn.PlayerID != playerID {
		return ErrNotActivePlayer
	}
	if turn.Status != models.TurnStatusDrawing {
		return ErrWrongPhase
	}
	if err := a.store.UpdateTurnStatus(ctx, turn.ID, models.TurnStatusPlacing); err != nil {
		return fmt.Errorf("failed to start placing: %w", err)
	}
	a.log.Info().Str("turn_id", turn.ID.String()).Msg("turn moved to placing")
	return nil
}

// ConfirmPlacement locks in the active player's chosen interval and opens
// the challenge window (PLACING -> CHALLENGING). The interval and the
// status move are written in a single row update.
func (a *App) ConfirmPlacement(ctx context.Context, gameID, playerID uuid.UUID, interval int) error {
	turn, err := a.CurrentTurn(ctx, gameID)
	if err != nil {
		return err
	}
	if turn.PlayerID != playerID {
		return ErrNotActivePlayer
	}
	if turn.Status != models.TurnStatusPlacing {
		return ErrWrongPhase
	}
	timeline, err := a.playerTimeline(ctx, gameID, playerID)
	if err != nil {
		return err
	}
	if interval < 0 || interval > len(timeline) {
		return ErrInvalidInterval
	}
	if err := a.store.UpdateTurnPlacement(ctx, turn.ID, interval, models.TurnStatusChallenging); err != nil {
		return fmt.Errorf("failed to confirm placement: %w", err)
	}
	a.log.Info().
		Str("turn_id", turn.ID.String()).
		Int("interval", interval).
		Msg("placement confirmed, challenge window open")
	return nil
}

// SubmitChallenge declares that a non-active player contests the placement.
// The challenge starts with the pending sentinel; the spot is committed
// separately via CommitChallenge. A pass is simply the absence of a
// challenge row, so there is no counterpart operation.
func (a *App) SubmitChallenge(ctx context.Context, gameID, playerID uuid.UUID) (*models.Challenge, error) {
	turn, err := a.CurrentTurn(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if turn.PlayerID == playerID {
		return nil, ErrActivePlayerChallenge
	}
	if turn.Status != models.TurnStatusChallenging {
		return nil, ErrWrongPhase
	}
	existing, err := a.store.ListChallengesByTurn(ctx, turn.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	for _, c := range existing {
		if c.PlayerID == playerID {
			return nil, ErrAlreadyChallenged
		}
	}
	challenge := &models.Challenge{
		ID:            uuid.New(),
		TurnID:        turn.ID,
		PlayerID:      playerID,
		IntervalIndex: models.PendingInterval,
	}
	if err := a.store.CreateChallenge(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	a.log.Info().
		Str("turn_id", turn.ID.String()).
		Str("player_id", playerID.String()).
		Msg("challenge declared")
	return challenge, nil
}

// CommitChallenge writes the challenger's chosen interval onto their
// existing challenge row. Intervals index the active player's timeline.
// Commits are only accepted while the challenge window is open; once the
// turn reveals, an uncommitted challenge stays pending and never wins.
func (a *App) CommitChallenge(ctx context.Context, gameID, playerID uuid.UUID, interval int) error {
	turn, err := a.CurrentTurn(ctx, gameID)
	if err != nil {
		return err
	}
	if turn.Status != models.TurnStatusChallenging {
		return ErrWrongPhase
	}
	timeline, err := a.playerTimeline(ctx, gameID, turn.PlayerID)
	if err != nil {
		return err
	}
	if interval < 0 || interval > len(timeline) {
		return ErrInvalidInterval
	}
	challenges, err := a.store.ListChallengesByTurn(ctx, turn.ID)
	if err != nil {
		return fmt.Errorf("failed to list challenges: %w", err)
	}
	for _, c := range challenges {
		if c.PlayerID == playerID {
			if err := a.store.UpdateChallengeInterval(ctx, c.ID, interval); err != nil {
				return fmt.Errorf("failed to commit challenge interval: %w", err)
			}
			a.log.Info().
				Str("turn_id", turn.ID.String()).
				Str("player_id", playerID.String()).
				Int("interval", interval).
				Msg("challenge interval committed")
			return nil
		}
	}
	return ErrChallengeNotFound
}

// Reveal ends the challenge window at the active player's discretion
// (CHALLENGING -> REVEALING). There is no automatic transition: even after
// every observer has decided, the reveal is always player-initiated.
func (a *App) Reveal(ctx context.Context, gameID, playerID uuid.UUID) error {
	turn, err := a.CurrentTurn(ctx, gameID)
	if err != nil {
		return err
	}
	if turn.PlayerID != playerID {
		return ErrNotActivePlayer
	}
	if turn.Status != models.TurnStatusChallenging {
		return ErrWrongPhase
	}
	if err := a.store.UpdateTurnStatus(ctx, turn.ID, models.TurnStatusRevealing); err != nil {
		return fmt.Errorf("failed to reveal: %w", err)
	}
	a.log.Info().Str("turn_id", turn.ID.String()).Msg("turn revealed")
	return nil
}

func (a *App) playerTimeline(ctx context.Context, gameID, playerID uuid.UUID) ([]int, error) {
	players, err := a.store.ListPlayersByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	for _, p := range players {
		if p.ID == playerID {
			return p.Timeline, nil
		}
	}
	return nil, fmt.Errorf("player %s: %w", playerID, store.ErrNotFound)
}
