// Package session runs one client's view of a game: a periodic poll loop
// that reconciles a local snapshot against the shared store, plus
// optimistic local mutations for the player's own actions.
//
// The snapshot is replaced wholesale on every successful poll — the store's
// current rows are truth and silently win over any optimistic guess. A
// session is created on entering a game and torn down by cancelling the
// context passed to Run.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/FariaVasco/cinescenes/internal/models"
	"github.com/FariaVasco/cinescenes/internal/store"
	"github.com/FariaVasco/cinescenes/internal/turns"
)

const (
	// DefaultPollInterval paces the reconciliation loop. Multi-second
	// convergence between clients is an accepted property of the protocol,
	// not something to tune away.
	DefaultPollInterval = 1500 * time.Millisecond

	// DefaultChallengeWindow is the local countdown observers get to decide
	// challenge-or-pass. Expiry is an implicit pass and writes nothing.
	DefaultChallengeWindow = 5 * time.Second
)

// Snapshot is the client's last reconciled view of the game. Turn is nil
// while the game is still in the lobby.
type Snapshot struct {
	Game       *models.Game
	Players    []models.Player
	Turn       *models.Turn
	Movie      *models.Movie
	Challenges []models.Challenge
}

// Ephemeral is per-turn local state that the store has no memory of. It is
// reset unconditionally whenever the polled turn identity changes.
type Ephemeral struct {
	// SelectedInterval is the interval the player is hovering/confirmed.
	SelectedInterval *int
	// ChallengeDecided is set once this observer challenged, passed, or let
	// the decision window expire.
	ChallengeDecided bool
	// ChallengeID tracks this player's own challenge row so a second insert
	// is never issued for the same turn.
	ChallengeID *uuid.UUID
	// TrailerWatched flags that the replay of the safe window finished.
	TrailerWatched bool
}

// Config carries session tuning; zero values fall back to defaults.
type Config struct {
	PollInterval    time.Duration
	ChallengeWindow time.Duration
	Clock           clockwork.Clock
	Logger          zerolog.Logger
}

// Session is one player's live connection to a game.
type Session struct {
	store    store.Store
	turns    *turns.App
	gameID   uuid.UUID
	playerID uuid.UUID

	clock  clockwork.Clock
	poll   time.Duration
	window time.Duration
	log    zerolog.Logger

	// OnTurnChanged fires when the polled turn identity differs from the
	// previous one. OnPhaseChanged fires on a same-turn status change.
	// Assign before calling Run; both are invoked from the poll goroutine.
	OnTurnChanged  func(prev, current *models.Turn)
	OnPhaseChanged func(current *models.Turn)

	mu          sync.Mutex
	snap        Snapshot
	eph         Ephemeral
	windowTimer clockwork.Timer
}

// New creates a session for a player in a game.
func New(st store.Store, turnsApp *turns.App, gameID, playerID uuid.UUID, cfg Config) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ChallengeWindow <= 0 {
		cfg.ChallengeWindow = DefaultChallengeWindow
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Session{
		store:    st,
		turns:    turnsApp,
		gameID:   gameID,
		playerID: playerID,
		clock:    cfg.Clock,
		poll:     cfg.PollInterval,
		window:   cfg.ChallengeWindow,
		log: cfg.Logger.With().
			Str("component", "session").
			Str("game_id", gameID.String()).
			Str("player_id", playerID.String()).
			Logger(),
	}
}

// Run polls until ctx is cancelled. A failed poll is "no update this
// cycle": it is logged and the next tick retries; nothing is surfaced.
func (s *Session) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.poll)
	defer ticker.Stop()
	defer s.stopWindowTimer()

	s.log.Info().Dur("interval", s.poll).Msg("session started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("session stopped")
			return nil
		case <-ticker.Chan():
			if err := s.PollOnce(ctx); err != nil {
				s.log.Debug().Err(err).Msg("poll failed; keeping previous snapshot")
			}
		}
	}
}

// PollOnce performs a single reconciliation cycle: read the authoritative
// rows, detect turn/phase changes, and replace the local snapshot.
func (s *Session) PollOnce(ctx context.Context) error {
	game, err := s.store.GetGame(ctx, s.gameID)
	if err != nil {
		return err
	}
	players, err := s.store.ListPlayersByGame(ctx, s.gameID)
	if err != nil {
		return err
	}

	var (
		turn       *models.Turn
		movie      *models.Movie
		challenges []models.Challenge
	)
	turn, err = s.store.LatestTurnByGame(ctx, s.gameID)
	if errors.Is(err, store.ErrNotFound) {
		turn = nil // still in the lobby
	} else if err != nil {
		return err
	}
	if turn != nil {
		movie, err = s.store.GetMovie(ctx, turn.MovieID)
		if err != nil {
			return err
		}
		challenges, err = s.store.ListChallengesByTurn(ctx, turn.ID)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	prev := s.snap.Turn
	turnChanged := turnIdentityChanged(prev, turn)
	phaseChanged := !turnChanged && prev != nil && turn != nil && prev.Status != turn.Status

	if turnChanged {
		// the authoritative turn row carries no memory of local in-progress
		// choices, so everything ephemeral goes
		s.eph = Ephemeral{}
		s.stopWindowTimerLocked()
	}
	s.snap = Snapshot{
		Game:       game,
		Players:    players,
		Turn:       turn,
		Movie:      movie,
		Challenges: challenges,
	}
	if (turnChanged || phaseChanged) &&
		turn != nil &&
		turn.Status == models.TurnStatusChallenging &&
		turn.PlayerID != s.playerID &&
		!s.eph.ChallengeDecided {
		s.armWindowTimerLocked(turn.ID)
	}
	s.mu.Unlock()

	if turnChanged && s.OnTurnChanged != nil {
		s.OnTurnChanged(prev, turn)
	}
	if phaseChanged && s.OnPhaseChanged != nil {
		s.OnPhaseChanged(turn)
	}
	return nil
}

func turnIdentityChanged(prev, next *models.Turn) bool {
	switch {
	case prev == nil && next == nil:
		return false
	case prev == nil || next == nil:
		return true
	default:
		return prev.ID != next.ID
	}
}

// armWindowTimerLocked starts the challenge decision countdown for this
// observer. Expiry is an implicit pass: purely local, no store write.
func (s *Session) armWindowTimerLocked(turnID uuid.UUID) {
	s.stopWindowTimerLocked()
	s.windowTimer = s.clock.AfterFunc(s.window, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.snap.Turn == nil || s.snap.Turn.ID != turnID || s.eph.ChallengeDecided {
			return
		}
		s.eph.ChallengeDecided = true
		s.log.Info().Str("turn_id", turnID.String()).Msg("challenge window expired, passing")
	})
}

func (s *Session) stopWindowTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWindowTimerLocked()
}

func (s *Session) stopWindowTimerLocked() {
	if s.windowTimer != nil {
		s.windowTimer.Stop()
		s.windowTimer = nil
	}
}

// Snapshot returns a copy of the last reconciled view. The copy is deep
// enough that later optimistic patches never show through it.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.snap
	if s.snap.Game != nil {
		g := *s.snap.Game
		out.Game = &g
	}
	if s.snap.Turn != nil {
		t := *s.snap.Turn
		if s.snap.Turn.PlacedInterval != nil {
			v := *s.snap.Turn.PlacedInterval
			t.PlacedInterval = &v
		}
		out.Turn = &t
	}
	if s.snap.Movie != nil {
		m := *s.snap.Movie
		out.Movie = &m
	}
	out.Players = append([]models.Player(nil), s.snap.Players...)
	out.Challenges = append([]models.Challenge(nil), s.snap.Challenges...)
	return out
}

// Ephemeral returns a copy of the per-turn local state.
func (s *Session) Ephemeral() Ephemeral {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eph
}
