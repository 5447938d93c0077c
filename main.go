// Command lpwatch is a Discord bot that follows League of Legends and TFT
// players and reports their games and rank progress.
//
// Usage:
//
//	lpwatch run
//	lpwatch recap daily
//	lpwatch recap monthly --month 2024-05
//	lpwatch purge --days 400
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lpwatch/internal/bot"
	"lpwatch/internal/common"
	"lpwatch/internal/config"
	"lpwatch/internal/recap"
	"lpwatch/internal/riotapi"
	"lpwatch/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Timeout of a single request to the riot API
const requestTimeout = 10 * time.Second

func main() {

	root := &cobra.Command{
		Use:           "lpwatch",
		Short:         "Discord bot reporting League of Legends and TFT games",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd())
	root.AddCommand(recapCmd())
	root.AddCommand(purgeCmd())

	if err := root.Execute(); err != nil {
		log.Error().Msg(err.Error())
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot: answer commands, poll games and publish recaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBot(func(ctx context.Context, b *bot.Bot) error {
				return b.Run(ctx)
			})
		},
	}
}

func recapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recap",
		Short: "Publish a recap right away",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "daily",
		Short: "Publish the daily LP recap and reset the daily baselines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(ctx context.Context, runner *recap.Runner) error {
				return runner.Daily(ctx)
			})
		},
	})

	var month string
	monthly := &cobra.Command{
		Use:   "monthly",
		Short: "Publish the monthly recap of the month before the given one",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if month != "" {
				parsed, err := time.ParseInLocation("2006-01", month, time.Local)
				if err != nil {
					return fmt.Errorf("invalid month %q, expected YYYY-MM", month)
				}
				now = parsed
			}
			return withSession(func(ctx context.Context, runner *recap.Runner) error {
				return runner.Monthly(ctx, now)
			})
		},
	}
	monthly.Flags().StringVar(&month, "month", "", "Current month as YYYY-MM, the recap covers the month before")
	cmd.AddCommand(monthly)
	return cmd
}

func purgeCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete games older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			if days <= 0 {
				days = cfg.RetentionDays
			}
			s, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer s.Close()

			purged, err := s.PurgeGames(cmd.Context(), time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}
			log.Info().Msg(fmt.Sprintf("Purged %d games older than %d days", purged, days))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Retention in days, defaults to RETENTION_DAYS")
	return cmd
}

// Shared setup

func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return cfg, nil
}

// Build everything the bot needs and hand it over until the context ends
func withBot(fn func(ctx context.Context, b *bot.Bot) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := setup()
	if err != nil {
		return err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	s, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer s.Close()

	restrictions := []common.Restriction{
		{Requests: cfg.RateLimitBurstRequests, Duration: cfg.RateLimitBurstWindow},
		{Requests: cfg.RateLimitRequests, Duration: cfg.RateLimitWindow},
	}
	proxy := common.NewProxy(common.NewRateLimiter(restrictions, cfg.RateLimitMinSpacing), requestTimeout)
	api := riotapi.NewRiotApi(proxy, cfg.RiotAPIKey, cfg.RiotTFTAPIKey)

	b, err := bot.New(cfg, s, api)
	if err != nil {
		return err
	}
	log.Info().Msg(fmt.Sprintf("Bot created with prefix %q and %s store", cfg.CommandPrefix, cfg.DatabaseDriver))
	return fn(ctx, b)
}

// Recaps only need an open discord session, no command handling
func withSession(fn func(ctx context.Context, runner *recap.Runner) error) error {
	return withBot(func(ctx context.Context, b *bot.Bot) error {
		if err := b.Open(); err != nil {
			return err
		}
		defer b.Close()
		return fn(ctx, b.Runner())
	})
}
