package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Movie is a card in the draw pool. Read-only to gameplay; the pool is
// maintained by the offline trailer-prep tooling. SafeStartSec/SafeEndSec
// bound the spoiler-free window of the trailer. Trailer carries the raw
// provider metadata emitted by that tooling and is opaque to the core.
type Movie struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Year         int             `json:"year"`
	Director     string          `json:"director"`
	TrailerURL   string          `json:"trailer_url"`
	SafeStartSec int             `json:"safe_start_sec"`
	SafeEndSec   int             `json:"safe_end_sec"`
	Active       bool            `json:"active"`
	Trailer      json.RawMessage `json:"trailer,omitempty"`
}
