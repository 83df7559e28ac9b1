package lobby

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/FariaVasco/cinescenes/internal/models"
	"github.com/FariaVasco/cinescenes/internal/store/memory"
)

func seedPool(st *memory.Store, years ...int) []models.Movie {
	out := make([]models.Movie, len(years))
	for i, y := range years {
		m := models.Movie{ID: uuid.New(), Title: fmt.Sprintf("movie-%d", y), Year: y, Active: true}
		st.AddMovie(&m)
		out[i] = m
	}
	return out
}

func TestCreateGame(t *testing.T) {
	st := memory.New()
	app := NewApp(st, zerolog.Nop())
	ctx := context.Background()

	game, host, err := app.CreateGame(ctx, "Ana", models.GameModePersonal)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if game.Status != models.GameStatusLobby {
		t.Errorf("status = %s, want LOBBY", game.Status)
	}
	if len(game.Code) != codeLength {
		t.Errorf("code %q length = %d, want %d", game.Code, len(game.Code), codeLength)
	}
	for _, r := range game.Code {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Errorf("code %q contains %q, outside the alphabet", game.Code, r)
		}
	}
	if host.GameID != game.ID || host.Name != "Ana" {
		t.Errorf("host = %+v, want player of game %s", host, game.ID)
	}

	roster, err := st.ListPlayersByGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(roster) != 1 {
		t.Errorf("roster size = %d, want 1 (host)", len(roster))
	}
}

func TestJoinGame(t *testing.T) {
	st := memory.New()
	app := NewApp(st, zerolog.Nop())
	ctx := context.Background()

	game, _, err := app.CreateGame(ctx, "Ana", models.GameModePersonal)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	// codes are case-insensitive
	joined, player, err := app.JoinGame(ctx, strings.ToLower(game.Code), "Bruno")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if joined.ID != game.ID || player.Name != "Bruno" {
		t.Errorf("joined %s as %+v", joined.ID, player)
	}

	if _, _, err := app.JoinGame(ctx, "ZZZZZZ", "Nobody"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("unknown code: got %v, want ErrGameNotFound", err)
	}
}

func TestJoinGameRejectsStartedAndFull(t *testing.T) {
	st := memory.New()
	app := NewApp(st, zerolog.Nop())
	ctx := context.Background()

	game, host, err := app.CreateGame(ctx, "Ana", models.GameModePersonal)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	// fill the roster to the cap
	for i := 1; i < MaxPlayers; i++ {
		if _, _, err := app.JoinGame(ctx, game.Code, fmt.Sprintf("player-%d", i)); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	if _, _, err := app.JoinGame(ctx, game.Code, "ninth"); !errors.Is(err, ErrGameFull) {
		t.Errorf("9th join: got %v, want ErrGameFull", err)
	}

	seedPool(st, 1970, 1975, 1980, 1985, 1990, 1995, 2000, 2005, 2010)
	if _, err := app.StartGame(ctx, game.ID, host.ID); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if _, _, err := app.JoinGame(ctx, game.Code, "late"); !errors.Is(err, ErrGameStarted) {
		t.Errorf("join after start: got %v, want ErrGameStarted", err)
	}
}

func TestStartGamePreconditions(t *testing.T) {
	st := memory.New()
	app := NewApp(st, zerolog.Nop())
	ctx := context.Background()

	game, host, err := app.CreateGame(ctx, "Ana", models.GameModePersonal)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	_, guest, err := app.JoinGame(ctx, game.Code, "Bruno")
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}

	// 2 players need 3 movies; give them 2
	seedPool(st, 1980, 1990)
	if _, err := app.StartGame(ctx, game.ID, host.ID); !errors.Is(err, ErrNotEnoughMovies) {
		t.Errorf("undersized pool: got %v, want ErrNotEnoughMovies", err)
	}
	// the failed start must leave the game in the lobby
	g, err := st.GetGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if g.Status != models.GameStatusLobby {
		t.Errorf("status after failed start = %s, want LOBBY", g.Status)
	}

	seedPool(st, 2000)
	if _, err := app.StartGame(ctx, game.ID, guest.ID); !errors.Is(err, ErrNotHost) {
		t.Errorf("guest start: got %v, want ErrNotHost", err)
	}
}

func TestStartGameDealsCardsAndFirstTurn(t *testing.T) {
	st := memory.New()
	app := NewApp(st, zerolog.Nop())
	ctx := context.Background()

	game, host, err := app.CreateGame(ctx, "Ana", models.GameModePersonal)
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	for _, name := range []string{"Bruno", "Carla"} {
		if _, _, err := app.JoinGame(ctx, game.Code, name); err != nil {
			t.Fatalf("JoinGame(%s): %v", name, err)
		}
	}

	pool := seedPool(st, 1972, 1985, 1993, 1999, 2019)
	yearOf := make(map[int]bool, len(pool))
	for _, m := range pool {
		yearOf[m.Year] = true
	}

	first, err := app.StartGame(ctx, game.ID, host.ID)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	g, err := st.GetGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if g.Status != models.GameStatusActive {
		t.Errorf("status = %s, want ACTIVE", g.Status)
	}

	players, err := st.ListPlayersByGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	seen := make(map[int]bool)
	for _, p := range players {
		if len(p.Timeline) != 1 {
			t.Fatalf("player %s timeline = %v, want exactly one starting card", p.Name, p.Timeline)
		}
		y := p.Timeline[0]
		if !yearOf[y] {
			t.Errorf("starting year %d not from the pool", y)
		}
		if seen[y] {
			t.Errorf("starting year %d dealt twice", y)
		}
		seen[y] = true
	}

	if first.Status != models.TurnStatusDrawing {
		t.Errorf("first turn status = %s, want DRAWING", first.Status)
	}
	if first.PlayerID != players[0].ID {
		t.Errorf("first turn player = %s, want first joiner %s", first.PlayerID, players[0].ID)
	}
	firstMovie, err := st.GetMovie(ctx, first.MovieID)
	if err != nil {
		t.Fatalf("get first movie: %v", err)
	}
	if seen[firstMovie.Year] {
		t.Errorf("first turn movie year %d was also dealt as a starting card", firstMovie.Year)
	}
}

func TestJoinCodePNG(t *testing.T) {
	png, err := JoinCodePNG("https://game.example", "ab2cd3", 128)
	if err != nil {
		t.Fatalf("JoinCodePNG: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty image")
	}
	// PNG magic bytes
	if string(png[1:4]) != "PNG" {
		t.Errorf("output does not look like a PNG: % x", png[:8])
	}
}
