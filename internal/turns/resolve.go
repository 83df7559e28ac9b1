package turns

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/FariaVasco/cinescenes/internal/models"
	"github.com/FariaVasco/cinescenes/internal/placement"
)

// Resolution is the full outcome of a revealed turn.
type Resolution struct {
	Turn  *models.Turn
	Movie *models.Movie

	// ValidIntervals are the correct slots on the active player's timeline
	// as it stood before this card was awarded.
	ValidIntervals []int

	// ActiveCorrect reports whether the active player's placement was one of
	// the valid slots.
	ActiveCorrect bool

	// WinnerID is the player awarded the card: the active player when
	// correct, otherwise a challenger who committed a valid slot. Nil when
	// nobody was right and the card is discarded.
	WinnerID *uuid.UUID

	// CoinBackPlayerIDs lists challengers who committed the other valid slot
	// in the duplicate-year case while the active player was also correct.
	// They did not win the card but were not wrong, so they must not be
	// penalized. Surfaced for the UI; no coin balance is persisted.
	CoinBackPlayerIDs []uuid.UUID

	// NextTurn is the freshly created turn for the next player in rotation.
	NextTurn *models.Turn
}

// Resolve evaluates the current turn of the game (which must be REVEALING),
// rewards the winner, and advances play by inserting a new DRAWING turn for
// the next player in join order. The resolved turn is then marked COMPLETE.
func (a *App) Resolve(ctx context.Context, gameID uuid.UUID) (*Resolution, error) {
	turn, err := a.CurrentTurn(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if turn.Status != models.TurnStatusRevealing {
		return nil, ErrWrongPhase
	}

	movie, err := a.store.GetMovie(ctx, turn.MovieID)
	if err != nil {
		return nil, fmt.Errorf("failed to get turn movie: %w", err)
	}
	players, err := a.store.ListPlayersByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	challenges, err := a.store.ListChallengesByTurn(ctx, turn.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	active, err := findPlayer(players, turn.PlayerID)
	if err != nil {
		return nil, err
	}

	res := &Resolution{
		Turn:           turn,
		Movie:          movie,
		ValidIntervals: placement.ValidIntervals(movie.Year, active.Timeline),
	}
	res.ActiveCorrect = turn.PlacedInterval != nil &&
		placement.Contains(res.ValidIntervals, *turn.PlacedInterval)

	switch {
	case res.ActiveCorrect:
		res.WinnerID = &active.ID
		res.CoinBackPlayerIDs = coinBackEligible(res, challenges)
	default:
		for _, c := range challenges {
			if c.Committed() && placement.Contains(res.ValidIntervals, c.IntervalIndex) {
				id := c.PlayerID
				res.WinnerID = &id
				break
			}
		}
	}

	if res.WinnerID != nil {
		winner, err := findPlayer(players, *res.WinnerID)
		if err != nil {
			return nil, err
		}
		grown := placement.Insert(movie.Year, winner.Timeline)
		if err := a.store.UpdatePlayerTimeline(ctx, winner.ID, grown); err != nil {
			return nil, fmt.Errorf("failed to award card: %w", err)
		}
	}

	next, err := a.advance(ctx, turn, players)
	if err != nil {
		return nil, err
	}
	res.NextTurn = next

	// Terminal tag on the old row. Current-turn detection keys on creation
	// order, so the ordering of this write against the insert above is not
	// correctness-bearing.
	if err := a.store.UpdateTurnStatus(ctx, turn.ID, models.TurnStatusComplete); err != nil {
		return nil, fmt.Errorf("failed to complete turn: %w", err)
	}

	evt := a.log.Info().
		Str("turn_id", turn.ID.String()).
		Int("movie_year", movie.Year).
		Bool("active_correct", res.ActiveCorrect)
	if res.WinnerID != nil {
		evt = evt.Str("winner_id", res.WinnerID.String())
	}
	evt.Msg("turn resolved")

	return res, nil
}

// coinBackEligible flags challengers who picked the only remaining correct
// slot in the duplicate-year case. With a single valid slot the active
// player occupied it, so any challenger is plainly wrong and nobody
// qualifies.
func coinBackEligible(res *Resolution, challenges []models.Challenge) []uuid.UUID {
	if len(res.ValidIntervals) < 2 || res.Turn.PlacedInterval == nil {
		return nil
	}
	other := res.ValidIntervals[0]
	if other == *res.Turn.PlacedInterval {
		other = res.ValidIntervals[1]
	}
	var out []uuid.UUID
	for _, c := range challenges {
		if c.Committed() && c.IntervalIndex == other {
			out = append(out, c.PlayerID)
		}
	}
	return out
}

// advance rotates to the next player in join order and deals them a movie
// drawn uniformly from the active pool, excluding movies this game has
// already seen. An exhausted pool falls back to the full active pool,
// permitting repeats as a last resort.
func (a *App) advance(ctx context.Context, turn *models.Turn, players []models.Player) (*models.Turn, error) {
	idx := -1
	for i, p := range players {
		if p.ID == turn.PlayerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("active player %s not in roster", turn.PlayerID)
	}
	nextPlayer := players[(idx+1)%len(players)]

	movieID, err := a.drawMovie(ctx, turn.GameID, players)
	if err != nil {
		return nil, err
	}

	next := &models.Turn{
		ID:       uuid.New(),
		GameID:   turn.GameID,
		PlayerID: nextPlayer.ID,
		MovieID:  movieID,
		Status:   models.TurnStatusDrawing,
	}
	if err := a.store.CreateTurn(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to create next turn: %w", err)
	}
	a.log.Info().
		Str("turn_id", next.ID.String()).
		Str("player_id", nextPlayer.ID.String()).
		Msg("next turn dealt")
	return next, nil
}

// drawMovie picks uniformly from the active pool minus everything the game
// has seen: movies dealt by any past turn, and movies whose year already
// sits on a player's timeline. The latter covers the starting cards, which
// never had a turn row. The exclusions relax in tiers: a pool emptied only
// by the year rule re-admits year-shadowed movies first, and turn-used
// movies come back only when every movie has actually been dealt.
func (a *App) drawMovie(ctx context.Context, gameID uuid.UUID, players []models.Player) (uuid.UUID, error) {
	pool, err := a.store.ListActiveMovies(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list active movies: %w", err)
	}
	if len(pool) == 0 {
		return uuid.Nil, fmt.Errorf("active movie pool is empty")
	}

	past, err := a.store.ListTurnsByGame(ctx, gameID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list past turns: %w", err)
	}
	used := make(map[uuid.UUID]bool, len(past))
	for _, t := range past {
		used[t.MovieID] = true
	}
	seenYears := make(map[int]bool)
	for _, p := range players {
		for _, y := range p.Timeline {
			seenYears[y] = true
		}
	}

	fresh := make([]models.Movie, 0, len(pool))
	for _, m := range pool {
		if !used[m.ID] && !seenYears[m.Year] {
			fresh = append(fresh, m)
		}
	}
	if len(fresh) == 0 {
		// only year-shadowed movies left; a never-dealt movie still beats a repeat
		for _, m := range pool {
			if !used[m.ID] {
				fresh = append(fresh, m)
			}
		}
	}
	if len(fresh) == 0 {
		// pool exhausted; repeats allowed
		fresh = pool
	}
	return fresh[rand.Intn(len(fresh))].ID, nil
}

func findPlayer(players []models.Player, id uuid.UUID) (*models.Player, error) {
	for i := range players {
		if players[i].ID == id {
			return &players[i], nil
		}
	}
	return nil, fmt.Errorf("player %s not in roster", id)
}
