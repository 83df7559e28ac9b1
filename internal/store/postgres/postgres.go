// Package postgres implements the store contract against Postgres using
// database/sql with the lib/pq driver. SQL is hand-written per operation;
// every write touches a single row, matching the no-transaction contract
// the core is designed for.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/FariaVasco/cinescenes/internal/models"
	"github.com/FariaVasco/cinescenes/internal/store"
)

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const createGameQuery = `
INSERT INTO games (id, code, status, mode, created_at)
VALUES ($1, $2, $3, $4, now())
RETURNING created_at`

func (s *Store) CreateGame(ctx context.Context, game *models.Game) error {
	err := s.db.QueryRowContext(ctx, createGameQuery,
		game.ID, strings.ToUpper(game.Code), game.Status, game.Mode,
	).Scan(&game.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return store.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

const getGameQuery = `
SELECT id, code, status, mode, created_at
FROM games
WHERE id = $1`

func (s *Store) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	return s.scanGame(s.db.QueryRowContext(ctx, getGameQuery, id))
}

const getGameByCodeQuery = `
SELECT id, code, status, mode, created_at
FROM games
WHERE code = $1`

func (s *Store) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	return s.scanGame(s.db.QueryRowContext(ctx, getGameByCodeQuery, strings.ToUpper(code)))
}

func (s *Store) scanGame(row *sql.Row) (*models.Game, error) {
	var g models.Game
	err := row.Scan(&g.ID, &g.Code, &g.Status, &g.Mode, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return &g, nil
}

const updateGameStatusQuery = `
UPDATE games SET status = $2 WHERE id = $1`

func (s *Store) UpdateGameStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) error {
	return s.execOne(ctx, "update game status", updateGameStatusQuery, id, status)
}

const createPlayerQuery = `
INSERT INTO players (id, game_id, name, timeline, coins, joined_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING joined_at`

func (s *Store) CreatePlayer(ctx context.Context, player *models.Player) error {
	err := s.db.QueryRowContext(ctx, createPlayerQuery,
		player.ID, player.GameID, player.Name, pq.Array(timelineToInt64(player.Timeline)), player.Coins,
	).Scan(&player.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

const listPlayersByGameQuery = `
SELECT id, game_id, name, timeline, coins, joined_at
FROM players
WHERE game_id = $1
ORDER BY joined_at ASC, id ASC`

func (s *Store) ListPlayersByGame(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	rows, err := s.db.QueryContext(ctx, listPlayersByGameQuery, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players by game: %w", err)
	}
	defer rows.Close()

	var out []models.Player
	for rows.Next() {
		var p models.Player
		var timeline []int64
		if err := rows.Scan(&p.ID, &p.GameID, &p.Name, pq.Array(&timeline), &p.Coins, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		p.Timeline = timelineToInt(timeline)
		out = append(out, p)
	}
	return out, rows.Err()
}

const updatePlayerTimelineQuery = `
UPDATE players SET timeline = $2 WHERE id = $1`

func (s *Store) UpdatePlayerTimeline(ctx context.Context, id uuid.UUID, timeline []int) error {
	return s.execOne(ctx, "update player timeline", updatePlayerTimelineQuery, id, pq.Array(timelineToInt64(timeline)))
}

const createTurnQuery = `
INSERT INTO turns (id, game_id, player_id, movie_id, placed_interval, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
RETURNING created_at`

func (s *Store) CreateTurn(ctx context.Context, turn *models.Turn) error {
	var interval sql.NullInt32
	if turn.PlacedInterval != nil {
		interval = sql.NullInt32{Int32: int32(*turn.PlacedInterval), Valid: true}
	}
	err := s.db.QueryRowContext(ctx, createTurnQuery,
		turn.ID, turn.GameID, turn.PlayerID, turn.MovieID, interval, turn.Status,
	).Scan(&turn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create turn: %w", err)
	}
	return nil
}

const latestTurnByGameQuery = `
SELECT id, game_id, player_id, movie_id, placed_interval, status, created_at
FROM turns
WHERE game_id = $1
ORDER BY created_at DESC, id DESC
LIMIT 1`

func (s *Store) LatestTurnByGame(ctx context.Context, gameID uuid.UUID) (*models.Turn, error) {
	t, err := scanTurn(s.db.QueryRowContext(ctx, latestTurnByGameQuery, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest turn: %w", err)
	}
	return t, nil
}

func scanTurn(row *sql.Row) (*models.Turn, error) {
	var t models.Turn
	var interval sql.NullInt32
	if err := row.Scan(&t.ID, &t.GameID, &t.PlayerID, &t.MovieID, &interval, &t.Status, &t.CreatedAt); err != nil {
		return nil, err
	}
	if interval.Valid {
		v := int(interval.Int32)
		t.PlacedInterval = &v
	}
	return &t, nil
}

const listTurnsByGameQuery = `
SELECT id, game_id, player_id, movie_id, placed_interval, status, created_at
FROM turns
WHERE game_id = $1
ORDER BY created_at ASC, id ASC`

func (s *Store) ListTurnsByGame(ctx context.Context, gameID uuid.UUID) ([]models.Turn, error) {
	rows, err := s.db.QueryContext(ctx, listTurnsByGameQuery, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list turns by game: %w", err)
	}
	defer rows.Close()

	var out []models.Turn
	for rows.Next() {
		var t models.Turn
		var interval sql.NullInt32
		if err := rows.Scan(&t.ID, &t.GameID, &t.PlayerID, &t.MovieID, &interval, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		if interval.Valid {
			v := int(interval.Int32)
			t.PlacedInterval = &v
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const updateTurnStatusQuery = `
UPDATE turns SET status = $2 WHERE id = $1`

func (s *Store) UpdateTurnStatus(ctx context.Context, id uuid.UUID, status models.TurnStatus) error {
	return s.execOne(ctx, "update turn status", updateTurnStatusQuery, id, status)
}

const updateTurnPlacementQuery = `
UPDATE turns SET placed_interval = $2, status = $3 WHERE id = $1`

func (s *Store) UpdateTurnPlacement(ctx context.Context, id uuid.UUID, interval int, status models.TurnStatus) error {
	return s.execOne(ctx, "update turn placement", updateTurnPlacementQuery, id, interval, status)
}

const createChallengeQuery = `
INSERT INTO challenges (id, turn_id, player_id, interval_index, created_at)
VALUES ($1, $2, $3, $4, now())
RETURNING created_at`

func (s *Store) CreateChallenge(ctx context.Context, challenge *models.Challenge) error {
	err := s.db.QueryRowContext(ctx, createChallengeQuery,
		challenge.ID, challenge.TurnID, challenge.PlayerID, challenge.IntervalIndex,
	).Scan(&challenge.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

const listChallengesByTurnQuery = `
SELECT id, turn_id, player_id, interval_index, resolved_at, created_at
FROM challenges
WHERE turn_id = $1
ORDER BY created_at ASC, id ASC`

func (s *Store) ListChallengesByTurn(ctx context.Context, turnID uuid.UUID) ([]models.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, listChallengesByTurnQuery, turnID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges by turn: %w", err)
	}
	defer rows.Close()

	var out []models.Challenge
	for rows.Next() {
		var c models.Challenge
		var resolvedAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.TurnID, &c.PlayerID, &c.IntervalIndex, &resolvedAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		if resolvedAt.Valid {
			t := resolvedAt.Time
			c.ResolvedAt = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const updateChallengeIntervalQuery = `
UPDATE challenges SET interval_index = $2 WHERE id = $1`

func (s *Store) UpdateChallengeInterval(ctx context.Context, id uuid.UUID, interval int) error {
	return s.execOne(ctx, "update challenge interval", updateChallengeIntervalQuery, id, interval)
}

const getMovieQuery = `
SELECT id, title, year, director, trailer_url, safe_start_sec, safe_end_sec, active, trailer
FROM movies
WHERE id = $1`

func (s *Store) GetMovie(ctx context.Context, id uuid.UUID) (*models.Movie, error) {
	var m models.Movie
	var trailer pqtype.NullRawMessage
	err := s.db.QueryRowContext(ctx, getMovieQuery, id).Scan(
		&m.ID, &m.Title, &m.Year, &m.Director, &m.TrailerURL,
		&m.SafeStartSec, &m.SafeEndSec, &m.Active, &trailer,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	if trailer.Valid {
		m.Trailer = trailer.RawMessage
	}
	return &m, nil
}

const listActiveMoviesQuery = `
SELECT id, title, year, director, trailer_url, safe_start_sec, safe_end_sec, active, trailer
FROM movies
WHERE active
ORDER BY title ASC`

func (s *Store) ListActiveMovies(ctx context.Context) ([]models.Movie, error) {
	rows, err := s.db.QueryContext(ctx, listActiveMoviesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list active movies: %w", err)
	}
	defer rows.Close()

	var out []models.Movie
	for rows.Next() {
		var m models.Movie
		var trailer pqtype.NullRawMessage
		if err := rows.Scan(
			&m.ID, &m.Title, &m.Year, &m.Director, &m.TrailerURL,
			&m.SafeStartSec, &m.SafeEndSec, &m.Active, &trailer,
		); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		if trailer.Valid {
			m.Trailer = trailer.RawMessage
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func timelineToInt64(timeline []int) []int64 {
	out := make([]int64, len(timeline))
	for i, y := range timeline {
		out[i] = int64(y)
	}
	return out
}

func timelineToInt(timeline []int64) []int {
	out := make([]int, len(timeline))
	for i, y := range timeline {
		out[i] = int(y)
	}
	return out
}
