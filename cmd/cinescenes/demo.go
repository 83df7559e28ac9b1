package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FariaVasco/cinescenes/internal/lobby"
	"github.com/FariaVasco/cinescenes/internal/models"
	"github.com/FariaVasco/cinescenes/internal/placement"
	"github.com/FariaVasco/cinescenes/internal/store/memory"
	"github.com/FariaVasco/cinescenes/internal/turns"
)

// demoCatalog is a tiny built-in pool so the demo needs no database.
var demoCatalog = []models.Movie{
	{Title: "The Godfather", Year: 1972, Director: "Francis Ford Coppola"},
	{Title: "Back to the Future", Year: 1985, Director: "Robert Zemeckis"},
	{Title: "Jurassic Park", Year: 1993, Director: "Steven Spielberg"},
	{Title: "The Matrix", Year: 1999, Director: "Lana & Lilly Wachowski"},
	{Title: "Parasite", Year: 2019, Director: "Bong Joon-ho"},
}

func newDemoCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Play one scripted game round against an in-memory store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), cfg)
		},
	}
}

// runDemo walks one full round with three players where every active player
// plays the correct interval, printing each phase as it goes.
func runDemo(ctx context.Context, cfg *Config) error {
	logger := cfg.logger()
	st := memory.New()
	for _, m := range demoCatalog {
		movie := m
		movie.ID = uuid.New()
		movie.Active = true
		st.AddMovie(&movie)
	}

	lobbyApp := lobby.NewApp(st, logger)
	turnsApp := turns.NewApp(st, logger)

	game, host, err := lobbyApp.CreateGame(ctx, "Ana", models.GameModePersonal)
	if err != nil {
		return err
	}
	fmt.Printf("created game %s (code %s)\n", game.ID, game.Code)

	for _, name := range []string{"Bruno", "Carla"} {
		if _, _, err := lobbyApp.JoinGame(ctx, game.Code, name); err != nil {
			return err
		}
		fmt.Printf("%s joined\n", name)
	}

	first, err := lobbyApp.StartGame(ctx, game.ID, host.ID)
	if err != nil {
		return err
	}
	movie, err := st.GetMovie(ctx, first.MovieID)
	if err != nil {
		return err
	}
	fmt.Printf("game started; %s is up, guessing %q\n", "Ana", movie.Title)

	if err := turnsApp.StartPlacing(ctx, game.ID, first.PlayerID); err != nil {
		return err
	}

	players, err := st.ListPlayersByGame(ctx, game.ID)
	if err != nil {
		return err
	}
	active := players[0]
	interval := placement.CorrectInterval(movie.Year, active.Timeline)
	if err := turnsApp.ConfirmPlacement(ctx, game.ID, active.ID, interval); err != nil {
		return err
	}
	fmt.Printf("%s places %q at interval %d of %v\n", active.Name, movie.Title, interval, active.Timeline)

	if err := turnsApp.Reveal(ctx, game.ID, active.ID); err != nil {
		return err
	}
	res, err := turnsApp.Resolve(ctx, game.ID)
	if err != nil {
		return err
	}
	if res.ActiveCorrect {
		fmt.Printf("correct! %q came out in %d\n", movie.Title, movie.Year)
	} else {
		fmt.Printf("wrong — %q came out in %d\n", movie.Title, movie.Year)
	}
	fmt.Printf("next up: player %s\n", res.NextTurn.PlayerID)
	return nil
}
