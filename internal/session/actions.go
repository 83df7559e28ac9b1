package session

import (
	"context"

	"github.com/FariaVasco/cinescenes/internal/models"
	"github.com/FariaVasco/cinescenes/internal/turns"
)

// Player actions. Each issues the authoritative store write through the
// turns app and, on success, patches the cached snapshot so the UI reflects
// the action before the next poll. If another client's concurrent action
// superseded ours, the next poll silently overwrites the guess.

// StartPlacing begins the watch/place phase for the active player.
func (s *Session) StartPlacing(ctx context.Context) error {
	if err := s.turns.StartPlacing(ctx, s.gameID, s.playerID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Turn != nil {
		s.snap.Turn.Status = models.TurnStatusPlacing
	}
	return nil
}

// SelectInterval records the interval the player is considering. Local
// only; nothing is written until ConfirmPlacement.
func (s *Session) SelectInterval(interval int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := interval
	s.eph.SelectedInterval = &v
}

// MarkTrailerWatched flags that the safe-window replay finished. Local only.
func (s *Session) MarkTrailerWatched() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eph.TrailerWatched = true
}

// ConfirmPlacement locks in the active player's interval and opens the
// challenge window.
func (s *Session) ConfirmPlacement(ctx context.Context, interval int) error {
	if err := s.turns.ConfirmPlacement(ctx, s.gameID, s.playerID, interval); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := interval
	s.eph.SelectedInterval = &v
	if s.snap.Turn != nil {
		s.snap.Turn.Status = models.TurnStatusChallenging
		s.snap.Turn.PlacedInterval = &v
	}
	return nil
}

// Challenge declares a challenge for this observer. The session tracks its
// own challenge row and refuses a second insert for the same turn.
func (s *Session) Challenge(ctx context.Context) error {
	s.mu.Lock()
	if s.eph.ChallengeID != nil {
		s.mu.Unlock()
		return turns.ErrAlreadyChallenged
	}
	s.mu.Unlock()

	challenge, err := s.turns.SubmitChallenge(ctx, s.gameID, s.playerID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := challenge.ID
	s.eph.ChallengeID = &id
	s.eph.ChallengeDecided = true
	s.stopWindowTimerLocked()
	s.snap.Challenges = append(s.snap.Challenges, *challenge)
	return nil
}

// Pass records a challenge-or-pass decision of "pass". A pass is the
// absence of a challenge row, so nothing is written.
func (s *Session) Pass() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eph.ChallengeDecided = true
	s.stopWindowTimerLocked()
}

// CommitChallenge writes this observer's chosen interval onto their
// challenge row.
func (s *Session) CommitChallenge(ctx context.Context, interval int) error {
	if err := s.turns.CommitChallenge(ctx, s.gameID, s.playerID, interval); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Challenges {
		if s.snap.Challenges[i].PlayerID == s.playerID {
			s.snap.Challenges[i].IntervalIndex = interval
		}
	}
	return nil
}

// Reveal ends the challenge window (active player only).
func (s *Session) Reveal(ctx context.Context) error {
	if err := s.turns.Reveal(ctx, s.gameID, s.playerID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Turn != nil {
		s.snap.Turn.Status = models.TurnStatusRevealing
	}
	return nil
}

// Resolve evaluates the revealed turn and advances play. The new turn
// reaches every client, this one included, through polling; no optimistic
// patch is applied here.
func (s *Session) Resolve(ctx context.Context) (*turns.Resolution, error) {
	return s.turns.Resolve(ctx, s.gameID)
}
