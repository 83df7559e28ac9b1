package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	pollInterval    time.Duration
	challengeWindow time.Duration
	shareBaseURL    string
	verbose         bool
}

func (c *Config) validate() error {
	if c.pollInterval < 250*time.Millisecond {
		return fmt.Errorf("poll interval too aggressive for a shared store: %s", c.pollInterval)
	}
	if c.challengeWindow <= 0 {
		return fmt.Errorf("challenge window must be positive: %s", c.challengeWindow)
	}
	return nil
}

func (c *Config) logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if c.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CINESCENES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "cinescenes",
		Short:         "Trailer-guessing timeline game client.",
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.validate()
		},
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.DurationVar(&cfg.pollInterval, "poll-interval", 1500*time.Millisecond, "store poll cadence (env: CINESCENES_POLL_INTERVAL)")
	fs.DurationVar(&cfg.challengeWindow, "challenge-window", 5*time.Second, "challenge-or-pass decision window (env: CINESCENES_CHALLENGE_WINDOW)")
	fs.StringVar(&cfg.shareBaseURL, "share-base-url", "", "base URL encoded into join QR codes (env: CINESCENES_SHARE_BASE_URL)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: CINESCENES_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(
		newCreateCmd(cfg),
		newJoinCmd(cfg),
		newStartCmd(cfg),
		newPlayCmd(cfg),
		newQRCmd(cfg),
		newDemoCmd(cfg),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("cinescenes v{{.Version}}\n")

	return cmd
}
