// Package memory provides an in-memory Store implementation backed by
// mutex-guarded maps. It is used by tests and by the local demo mode; it
// intentionally mirrors the row-level semantics of the postgres store,
// including returning copies so callers never alias internal state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FariaVasco/cinescenes/internal/models"
	"github.com/FariaVasco/cinescenes/internal/store"
)

type Store struct {
	mu         sync.RWMutex
	games      map[uuid.UUID]*models.Game
	players    map[uuid.UUID]*models.Player
	turns      map[uuid.UUID]*models.Turn
	challenges map[uuid.UUID]*models.Challenge
	movies     map[uuid.UUID]*models.Movie

	// insertion counters break CreatedAt/JoinedAt ties so ordering stays
	// deterministic even when timestamps collide within a test
	playerSeq map[uuid.UUID]int
	turnSeq   map[uuid.UUID]int
	seq       int
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		games:      make(map[uuid.UUID]*models.Game),
		players:    make(map[uuid.UUID]*models.Player),
		turns:      make(map[uuid.UUID]*models.Turn),
		challenges: make(map[uuid.UUID]*models.Challenge),
		movies:     make(map[uuid.UUID]*models.Movie),
		playerSeq:  make(map[uuid.UUID]int),
		turnSeq:    make(map[uuid.UUID]int),
	}
}

func (s *Store) CreateGame(_ context.Context, game *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.games {
		if strings.EqualFold(g.Code, game.Code) {
			return store.ErrDuplicateCode
		}
	}
	if game.CreatedAt.IsZero() {
		game.CreatedAt = time.Now()
	}
	g := *game
	s.games[g.ID] = &g
	return nil
}

func (s *Store) GetGame(_ context.Context, id uuid.UUID) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (s *Store) GetGameByCode(_ context.Context, code string) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.games {
		if strings.EqualFold(g.Code, code) {
			out := *g
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateGameStatus(_ context.Context, id uuid.UUID, status models.GameStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return store.ErrNotFound
	}
	g.Status = status
	return nil
}

func (s *Store) CreatePlayer(_ context.Context, player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if player.JoinedAt.IsZero() {
		player.JoinedAt = time.Now()
	}
	p := *player
	p.Timeline = append([]int(nil), player.Timeline...)
	s.players[p.ID] = &p
	s.seq++
	s.playerSeq[p.ID] = s.seq
	return nil
}

func (s *Store) ListPlayersByGame(_ context.Context, gameID uuid.UUID) ([]models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Player
	for _, p := range s.players {
		if p.GameID == gameID {
			cp := *p
			cp.Timeline = append([]int(nil), p.Timeline...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.playerSeq[out[i].ID] < s.playerSeq[out[j].ID]
	})
	return out, nil
}

func (s *Store) UpdatePlayerTimeline(_ context.Context, id uuid.UUID, timeline []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Timeline = append([]int(nil), timeline...)
	return nil
}

func (s *Store) CreateTurn(_ context.Context, turn *models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	t := *turn
	if turn.PlacedInterval != nil {
		v := *turn.PlacedInterval
		t.PlacedInterval = &v
	}
	s.turns[t.ID] = &t
	s.seq++
	s.turnSeq[t.ID] = s.seq
	return nil
}

func (s *Store) LatestTurnByGame(_ context.Context, gameID uuid.UUID) (*models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.Turn
	for _, t := range s.turns {
		if t.GameID != gameID {
			continue
		}
		if latest == nil || s.turnSeq[t.ID] > s.turnSeq[latest.ID] {
			latest = t
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	return copyTurn(latest), nil
}

func (s *Store) ListTurnsByGame(_ context.Context, gameID uuid.UUID) ([]models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Turn
	for _, t := range s.turns {
		if t.GameID == gameID {
			out = append(out, *copyTurn(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return s.turnSeq[out[i].ID] < s.turnSeq[out[j].ID]
	})
	return out, nil
}

func (s *Store) UpdateTurnStatus(_ context.Context, id uuid.UUID, status models.TurnStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.turns[id]
	if !ok {
		return store.ErrNotFound
	}
	t.Status = status
	return nil
}

func (s *Store) UpdateTurnPlacement(_ context.Context, id uuid.UUID, interval int, status models.TurnStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.turns[id]
	if !ok {
		return store.ErrNotFound
	}
	t.PlacedInterval = &interval
	t.Status = status
	return nil
}

func (s *Store) CreateChallenge(_ context.Context, challenge *models.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if challenge.CreatedAt.IsZero() {
		challenge.CreatedAt = time.Now()
	}
	c := *challenge
	s.challenges[c.ID] = &c
	return nil
}

func (s *Store) ListChallengesByTurn(_ context.Context, turnID uuid.UUID) ([]models.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Challenge
	for _, c := range s.challenges {
		if c.TurnID == turnID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateChallengeInterval(_ context.Context, id uuid.UUID, interval int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[id]
	if !ok {
		return store.ErrNotFound
	}
	c.IntervalIndex = interval
	return nil
}

// AddMovie seeds a movie into the pool. Movies are read-only to gameplay,
// so this is not part of the store.Store contract.
func (s *Store) AddMovie(movie *models.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := *movie
	s.movies[m.ID] = &m
}

func (s *Store) GetMovie(_ context.Context, id uuid.UUID) (*models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movies[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *m
	return &out, nil
}

func (s *Store) ListActiveMovies(_ context.Context) ([]models.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Movie
	for _, m := range s.movies {
		if m.Active {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Title < out[j].Title
	})
	return out, nil
}

func copyTurn(t *models.Turn) *models.Turn {
	out := *t
	if t.PlacedInterval != nil {
		v := *t.PlacedInterval
		out.PlacedInterval = &v
	}
	return &out
}
