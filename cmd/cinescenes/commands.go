package main

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/FariaVasco/cinescenes/internal/dbconfig"
	"github.com/FariaVasco/cinescenes/internal/lobby"
	"github.com/FariaVasco/cinescenes/internal/models"
	"github.com/FariaVasco/cinescenes/internal/session"
	"github.com/FariaVasco/cinescenes/internal/store/postgres"
	"github.com/FariaVasco/cinescenes/internal/turns"
)

func openStore() (*postgres.Store, func(), error) {
	cfg := dbconfig.NewConfigFromEnv()
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return postgres.New(db), func() { db.Close() }, nil
}

func newCreateCmd(cfg *Config) *cobra.Command {
	var name, mode string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a game and print its join code.",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			app := lobby.NewApp(st, cfg.logger())
			game, host, err := app.CreateGame(cmd.Context(), name, models.GameMode(mode))
			if err != nil {
				return err
			}
			fmt.Printf("game %s created\ncode: %s\nhost player: %s\n", game.ID, game.Code, host.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "host display name")
	cmd.Flags().StringVar(&mode, "mode", string(models.GameModePersonal), "game mode (PERSONAL or SHARED)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newJoinCmd(cfg *Config) *cobra.Command {
	var name, code string
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a lobby by code.",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			app := lobby.NewApp(st, cfg.logger())
			game, player, err := app.JoinGame(cmd.Context(), code, name)
			if err != nil {
				return err
			}
			fmt.Printf("joined game %s\nplayer: %s\n", game.ID, player.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "join code")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newStartCmd(cfg *Config) *cobra.Command {
	var gameID, playerID string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a game (host only).",
		RunE: func(cmd *cobra.Command, args []string) error {
			gid, err := uuid.Parse(gameID)
			if err != nil {
				return fmt.Errorf("invalid game id: %w", err)
			}
			pid, err := uuid.Parse(playerID)
			if err != nil {
				return fmt.Errorf("invalid player id: %w", err)
			}
			st, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			app := lobby.NewApp(st, cfg.logger())
			turn, err := app.StartGame(cmd.Context(), gid, pid)
			if err != nil {
				return err
			}
			fmt.Printf("game started; first turn %s for player %s\n", turn.ID, turn.PlayerID)
			return nil
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "game id")
	cmd.Flags().StringVar(&playerID, "player", "", "host player id")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("player")
	return cmd
}

func newPlayCmd(cfg *Config) *cobra.Command {
	var gameID, playerID string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run a live session for a player, following the game until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gid, err := uuid.Parse(gameID)
			if err != nil {
				return fmt.Errorf("invalid game id: %w", err)
			}
			pid, err := uuid.Parse(playerID)
			if err != nil {
				return fmt.Errorf("invalid player id: %w", err)
			}
			st, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			logger := cfg.logger()
			sess := session.New(st, turns.NewApp(st, logger), gid, pid, session.Config{
				PollInterval:    cfg.pollInterval,
				ChallengeWindow: cfg.challengeWindow,
				Logger:          logger,
			})
			sess.OnTurnChanged = func(prev, current *models.Turn) {
				if current == nil {
					return
				}
				logger.Info().
					Str("turn_id", current.ID.String()).
					Str("active_player", current.PlayerID.String()).
					Msg("new turn")
			}
			sess.OnPhaseChanged = func(current *models.Turn) {
				logger.Info().
					Str("turn_id", current.ID.String()).
					Str("status", string(current.Status)).
					Msg("phase changed")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return sess.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&gameID, "game", "", "game id")
	cmd.Flags().StringVar(&playerID, "player", "", "player id")
	_ = cmd.MarkFlagRequired("game")
	_ = cmd.MarkFlagRequired("player")
	return cmd
}

func newQRCmd(cfg *Config) *cobra.Command {
	var code, out string
	var size int
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Render the share QR for a join code.",
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := lobby.JoinCodePNG(cfg.shareBaseURL, code, size)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, png, 0o644); err != nil {
				return fmt.Errorf("failed to write QR image: %w", err)
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "join code")
	cmd.Flags().StringVarP(&out, "out", "o", "join.png", "output file")
	cmd.Flags().IntVar(&size, "size", 256, "image size in pixels")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}
