// Seeds the movie pool from a YAML catalog produced by the trailer-prep
// tooling. Usage:
//
//	go run ./internal/tools/seedmovies catalog.yaml
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/FariaVasco/cinescenes/internal/dbconfig"
)

// CatalogEntry mirrors the prep tooling's YAML output.
type CatalogEntry struct {
	ID           string         `yaml:"id"`
	Title        string         `yaml:"title"`
	Year         int            `yaml:"year"`
	Director     string         `yaml:"director"`
	TrailerURL   string         `yaml:"trailer_url"`
	SafeStartSec int            `yaml:"safe_start_sec"`
	SafeEndSec   int            `yaml:"safe_end_sec"`
	Active       *bool          `yaml:"active"`
	Trailer      map[string]any `yaml:"trailer"`
}

func main() {
	path := "movies.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the YAML catalog
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read catalog: %v\n", err)
		os.Exit(1)
	}
	var entries []CatalogEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal catalog: %v\n", err)
		os.Exit(1)
	}

	// 2) Connect using shared dbconfig
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Upsert and count
	var (
		total    = len(entries)
		inserted int
		skipped  int
		errs     int
	)

	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = uuid.New().String()
		}
		active := true
		if e.Active != nil {
			active = *e.Active
		}
		var trailer []byte
		if e.Trailer != nil {
			trailer, err = json.Marshal(e.Trailer)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error encoding trailer blob for %q: %v\n", e.Title, err)
				errs++
				continue
			}
		}

		cmdTag, err := pool.Exec(context.Background(), `
            INSERT INTO movies (
              id, title, year, director, trailer_url,
              safe_start_sec, safe_end_sec, active, trailer
            ) VALUES (
              $1,$2,$3,$4,$5,$6,$7,$8,$9
            )
            ON CONFLICT (id) DO NOTHING
        `,
			id, e.Title, e.Year, e.Director, e.TrailerURL,
			e.SafeStartSec, e.SafeEndSec, active, trailer,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error inserting movie %q: %v\n", e.Title, err)
			errs++
			continue
		}
		if cmdTag.RowsAffected() == 1 {
			inserted++
		} else {
			skipped++
		}
	}

	// 4) Print summary
	fmt.Printf(
		"Movie seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		total, inserted, skipped, errs,
	)
}
