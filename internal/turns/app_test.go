package turns

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/FariaVasco/cinescenes/internal/models"
	"github.com/FariaVasco/cinescenes/internal/store/memory"
)

// fixture is a started game with an in-flight turn for players[0].
type fixture struct {
	store   *memory.Store
	app     *App
	game    *models.Game
	players []models.Player
	turn    *models.Turn
	movie   *models.Movie
}

// newFixture seeds a game with one player per timeline, a pool containing
// the turn movie plus extras, and a current turn in the given status.
func newFixture(t *testing.T, timelines [][]int, movieYear int, status models.TurnStatus, extraPool ...int) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	game := &models.Game{ID: uuid.New(), Code: "TESTGM", Status: models.GameStatusActive, Mode: models.GameModePersonal}
	if err := st.CreateGame(ctx, game); err != nil {
		t.Fatalf("create game: %v", err)
	}

	players := make([]models.Player, len(timelines))
	for i, tl := range timelines {
		p := models.Player{ID: uuid.New(), GameID: game.ID, Name: string(rune('A' + i)), Timeline: tl}
		if err := st.CreatePlayer(ctx, &p); err != nil {
			t.Fatalf("create player: %v", err)
		}
		players[i] = p
	}

	movie := &models.Movie{ID: uuid.New(), Title: "turn movie", Year: movieYear, Active: true}
	st.AddMovie(movie)
	for i, y := range extraPool {
		st.AddMovie(&models.Movie{ID: uuid.New(), Title: string(rune('a' + i)), Year: y, Active: true})
	}

	turn := &models.Turn{
		ID:       uuid.New(),
		GameID:   game.ID,
		PlayerID: players[0].ID,
		MovieID:  movie.ID,
		Status:   status,
	}
	if err := st.CreateTurn(ctx, turn); err != nil {
		t.Fatalf("create turn: %v", err)
	}

	return &fixture{
		store:   st,
		app:     NewApp(st, zerolog.Nop()),
		game:    game,
		players: players,
		turn:    turn,
		movie:   movie,
	}
}

func (f *fixture) currentTurn(t *testing.T) *models.Turn {
	t.Helper()
	turn, err := f.store.LatestTurnByGame(context.Background(), f.game.ID)
	if err != nil {
		t.Fatalf("latest turn: %v", err)
	}
	return turn
}

func TestStartPlacing(t *testing.T) {
	f := newFixture(t, [][]int{{1980}, {1990}}, 1999, models.TurnStatusDrawing, 2005, 2010)
	ctx := context.Background()

	if err := f.app.StartPlacing(ctx, f.game.ID, f.players[1].ID); !errors.Is(err, ErrNotActivePlayer) {
		t.Errorf("non-active StartPlacing: got %v, want ErrNotActivePlayer", err)
	}
	if err := f.app.StartPlacing(ctx, f.game.ID, f.players[0].ID); err != nil {
		t.Fatalf("StartPlacing: %v", err)
	}
	if got := f.currentTurn(t).Status; got != models.TurnStatusPlacing {
		t.Errorf("status = %s, want PLACING", got)
	}
	// repeated call fails the phase check
	if err := f.app.StartPlacing(ctx, f.game.ID, f.players[0].ID); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("second StartPlacing: got %v, want ErrWrongPhase", err)
	}
}

func TestConfirmPlacement(t *testing.T) {
	f := newFixture(t, [][]int{{1980, 1999}, {1990}}, 1990, models.TurnStatusPlacing, 2005, 2010)
	ctx := context.Background()

	if err := f.app.ConfirmPlacement(ctx, f.game.ID, f.players[1].ID, 1); !errors.Is(err, ErrNotActivePlayer) {
		t.Errorf("non-active ConfirmPlacement: got %v, want ErrNotActivePlayer", err)
	}
	if err := f.app.ConfirmPlacement(ctx, f.game.ID, f.players[0].ID, 3); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("out-of-range interval: got %v, want ErrInvalidInterval", err)
	}
	if err := f.app.ConfirmPlacement(ctx, f.game.ID, f.players[0].ID, -1); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("negative interval: got %v, want ErrInvalidInterval", err)
	}

	if err := f.app.ConfirmPlacement(ctx, f.game.ID, f.players[0].ID, 1); err != nil {
		t.Fatalf("ConfirmPlacement: %v", err)
	}
	turn := f.currentTurn(t)
	if turn.Status != models.TurnStatusChallenging {
		t.Errorf("status = %s, want CHALLENGING", turn.Status)
	}
	if turn.PlacedInterval == nil || *turn.PlacedInterval != 1 {
		t.Errorf("placed interval = %v, want 1", turn.PlacedInterval)
	}
}

func TestSubmitChallenge(t *testing.T) {
	f := newFixture(t, [][]int{{1980, 1999}, {1990}, {2001}}, 1990, models.TurnStatusChallenging, 2005, 2010)
	ctx := context.Background()

	if _, err := f.app.SubmitChallenge(ctx, f.game.ID, f.players[0].ID); !errors.Is(err, ErrActivePlayerChallenge) {
		t.Errorf("active player challenge: got %v, want ErrActivePlayerChallenge", err)
	}

	challenge, err := f.app.SubmitChallenge(ctx, f.game.ID, f.players[1].ID)
	if err != nil {
		t.Fatalf("SubmitChallenge: %v", err)
	}
	if challenge.IntervalIndex != models.PendingInterval {
		t.Errorf("new challenge interval = %d, want pending sentinel", challenge.IntervalIndex)
	}

	if _, err := f.app.SubmitChallenge(ctx, f.game.ID, f.players[1].ID); !errors.Is(err, ErrAlreadyChallenged) {
		t.Errorf("duplicate challenge: got %v, want ErrAlreadyChallenged", err)
	}

	// an independent challenge from a third player is fine
	if _, err := f.app.SubmitChallenge(ctx, f.game.ID, f.players[2].ID); err != nil {
		t.Errorf("second player's challenge: %v", err)
	}
}

func TestCommitChallenge(t *testing.T) {
	f := newFixture(t, [][]int{{1980, 1999}, {1990}}, 1990, models.TurnStatusChallenging, 2005, 2010)
	ctx := context.Background()

	if err := f.app.CommitChallenge(ctx, f.game.ID, f.players[1].ID, 1); !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("commit without declare: got %v, want ErrChallengeNotFound", err)
	}

	if _, err := f.app.SubmitChallenge(ctx, f.game.ID, f.players[1].ID); err != nil {
		t.Fatalf("SubmitChallenge: %v", err)
	}
	if err := f.app.CommitChallenge(ctx, f.game.ID, f.players[1].ID, 5); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("out-of-range commit: got %v, want ErrInvalidInterval", err)
	}
	if err := f.app.CommitChallenge(ctx, f.game.ID, f.players[1].ID, 1); err != nil {
		t.Fatalf("CommitChallenge: %v", err)
	}

	challenges, err := f.store.ListChallengesByTurn(ctx, f.turn.ID)
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	if len(challenges) != 1 || challenges[0].IntervalIndex != 1 {
		t.Errorf("challenges = %+v, want one committed at 1", challenges)
	}
}

func TestCommitChallengeClosedAfterReveal(t *testing.T) {
	f := newFixture(t, [][]int{{1980, 1999}, {1990}}, 1990, models.TurnStatusChallenging, 2005, 2010)
	ctx := context.Background()

	if _, err := f.app.SubmitChallenge(ctx, f.game.ID, f.players[1].ID); err != nil {
		t.Fatalf("SubmitChallenge: %v", err)
	}
	if err := f.app.Reveal(ctx, f.game.ID, f.players[0].ID); err != nil {
		t.Fatalf("Reveal: %v", err)
	}

	if err := f.app.CommitChallenge(ctx, f.game.ID, f.players[1].ID, 1); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("commit after reveal: got %v, want ErrWrongPhase", err)
	}
	// the row stays pending, so it cannot win at resolution
	challenges, err := f.store.ListChallengesByTurn(ctx, f.turn.ID)
	if err != nil {
		t.Fatalf("list challenges: %v", err)
	}
	if len(challenges) != 1 || challenges[0].Committed() {
		t.Errorf("challenges = %+v, want one still pending", challenges)
	}
}

func TestReveal(t *testing.T) {
	f := newFixture(t, [][]int{{1980}, {1990}}, 1999, models.TurnStatusChallenging, 2005, 2010)
	ctx := context.Background()

	if err := f.app.Reveal(ctx, f.game.ID, f.players[1].ID); !errors.Is(err, ErrNotActivePlayer) {
		t.Errorf("non-active Reveal: got %v, want ErrNotActivePlayer", err)
	}
	if err := f.app.Reveal(ctx, f.game.ID, f.players[0].ID); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if got := f.currentTurn(t).Status; got != models.TurnStatusRevealing {
		t.Errorf("status = %s, want REVEALING", got)
	}
}
