// Package lobby handles game creation, joining, and the start sequence
// that deals starting cards and inserts the first turn.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/FariaVasco/cinescenes/internal/models"
	"github.com/FariaVasco/cinescenes/internal/store"
)

const (
	// MaxPlayers is the hard roster cap per game.
	MaxPlayers = 8

	codeLength = 6
	// no 0/O/1/I: codes get read out loud and typed from small screens
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	codeAttempts = 5
)

var (
	// ErrGameNotFound is returned when no game matches the join code.
	ErrGameNotFound = errors.New("game not found")

	// ErrGameStarted is returned when joining a game that already left the
	// lobby.
	ErrGameStarted = errors.New("game already started")

	// ErrGameFull is returned when the roster is at MaxPlayers.
	ErrGameFull = errors.New("game is full")

	// ErrNotHost is returned when someone other than the first joiner tries
	// to start the game.
	ErrNotHost = errors.New("only the host can start the game")

	// ErrNotEnoughMovies is returned when the active pool is smaller than
	// players+1, which a start needs for starting cards plus a first draw.
	ErrNotEnoughMovies = errors.New("not enough movies in the pool to start")

	// ErrCodeSpaceExhausted is returned when repeated join code collisions
	// prevent game creation.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique join code")
)

// App handles lobby business logic against the shared store.
type App struct {
	store store.Store
	log   zerolog.Logger
}

// NewApp creates a new lobby App.
func NewApp(st store.Store, log zerolog.Logger) *App {
	return &App{
		store: st,
		log:   log.With().Str("component", "lobby").Logger(),
	}
}

// CreateGame inserts a new game in LOBBY status and its host as the first
// player. Join code uniqueness leans on the store's unique index: on a
// collision a fresh code is generated, up to codeAttempts times.
func (a *App) CreateGame(ctx context.Context, hostName string, mode models.GameMode) (*models.Game, *models.Player, error) {
	var game *models.Game
	for attempt := 0; attempt < codeAttempts; attempt++ {
		candidate := &models.Game{
			ID:     uuid.New(),
			Code:   newJoinCode(),
			Status: models.GameStatusLobby,
			Mode:   mode,
		}
		err := a.store.CreateGame(ctx, candidate)
		if errors.Is(err, store.ErrDuplicateCode) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create game: %w", err)
		}
		game = candidate
		break
	}
	if game == nil {
		return nil, nil, ErrCodeSpaceExhausted
	}

	host := &models.Player{
		ID:     uuid.New(),
		GameID: game.ID,
		Name:   hostName,
	}
	if err := a.store.CreatePlayer(ctx, host); err != nil {
		return nil, nil, fmt.Errorf("failed to create host player: %w", err)
	}

	a.log.Info().
		Str("game_id", game.ID.String()).
		Str("code", game.Code).
		Str("host", hostName).
		Msg("game created")
	return game, host, nil
}

// JoinGame adds a player to a lobby looked up by join code. Codes are
// case-insensitive.
func (a *App) JoinGame(ctx context.Context, code, name string) (*models.Game, *models.Player, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	game, err := a.store.GetGameByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrGameNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up game: %w", err)
	}
	if game.Status != models.GameStatusLobby {
		return nil, nil, ErrGameStarted
	}

	roster, err := a.store.ListPlayersByGame(ctx, game.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list players: %w", err)
	}
	if len(roster) >= MaxPlayers {
		return nil, nil, ErrGameFull
	}

	player := &models.Player{
		ID:     uuid.New(),
		GameID: game.ID,
		Name:   name,
	}
	if err := a.store.CreatePlayer(ctx, player); err != nil {
		return nil, nil, fmt.Errorf("failed to create player: %w", err)
	}

	a.log.Info().
		Str("game_id", game.ID.String()).
		Str("player", name).
		Int("roster", len(roster)+1).
		Msg("player joined")
	return game, player, nil
}

// StartGame deals one starting card (a movie year) to every player, deals a
// further movie to the first turn, and flips the game ACTIVE. Only the host
// (first joiner) may start.
//
// The pool size check is a pre-flight only: the store offers no multi-row
// transaction, so a concurrent start can in principle race it. The window
// is seconds wide and the loser of the race fails on the phase checks that
// follow, so no guard beyond the pre-check is taken.
func (a *App) StartGame(ctx context.Context, gameID, playerID uuid.UUID) (*models.Turn, error) {
	game, err := a.store.GetGame(ctx, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game.Status != models.GameStatusLobby {
		return nil, ErrGameStarted
	}

	players, err := a.store.ListPlayersByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if len(players) == 0 || players[0].ID != playerID {
		return nil, ErrNotHost
	}

	pool, err := a.store.ListActiveMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active movies: %w", err)
	}
	if len(pool) < len(players)+1 {
		return nil, ErrNotEnoughMovies
	}

	deck := shuffled(pool)
	for i, p := range players {
		if err := a.store.UpdatePlayerTimeline(ctx, p.ID, []int{deck[i].Year}); err != nil {
			return nil, fmt.Errorf("failed to deal starting card: %w", err)
		}
	}
	firstMovie := deck[len(players)]

	if err := a.store.UpdateGameStatus(ctx, gameID, models.GameStatusActive); err != nil {
		return nil, fmt.Errorf("failed to activate game: %w", err)
	}

	first := &models.Turn{
		ID:       uuid.New(),
		GameID:   gameID,
		PlayerID: players[0].ID,
		MovieID:  firstMovie.ID,
		Status:   models.TurnStatusDrawing,
	}
	if err := a.store.CreateTurn(ctx, first); err != nil {
		return nil, fmt.Errorf("failed to create first turn: %w", err)
	}

	a.log.Info().
		Str("game_id", gameID.String()).
		Int("players", len(players)).
		Int("pool", len(pool)).
		Msg("game started")
	return first, nil
}

func newJoinCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

func shuffled(pool []models.Movie) []models.Movie {
	out := append([]models.Movie(nil), pool...)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
