package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "warden",
		Usage:   "automated-actor enforcement daemon",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "platform-host",
			Usage:   "scheme, hostname, and port of the platform API",
			Value:   "https://api.example.com",
			EnvVars: []string{"WARDEN_PLATFORM_HOST"},
		},
		&cli.StringFlag{
			Name:    "platform-token",
			Usage:   "bearer token for the service account",
			EnvVars: []string{"WARDEN_PLATFORM_TOKEN"},
		},
		&cli.IntFlag{
			Name:    "platform-rate-limit",
			Usage:   "max number of requests per second to the platform",
			Value:   10,
			EnvVars: []string{"WARDEN_PLATFORM_RATE_LIMIT"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "actor",
			Usage:    "account the service runs as; also the ban note attribution signature",
			Required: true,
			EnvVars:  []string{"WARDEN_ACTOR"},
		},
		&cli.StringFlag{
			Name:    "home",
			Usage:   "ledger community (defaults to the actor's own community)",
			EnvVars: []string{"WARDEN_HOME"},
		},
		&cli.StringFlag{
			Name:    "scan",
			Usage:   "community scope polled for comments and submissions",
			Value:   "all",
			EnvVars: []string{"WARDEN_SCAN"},
		},
		&cli.StringFlag{
			Name:    "profile-base",
			Usage:   "URL prefix for account profile links in ledger posts",
			Value:   "https://www.example.com/user/",
			EnvVars: []string{"WARDEN_PROFILE_BASE"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection for the shared oracle cache (optional)",
			EnvVars: []string{"WARDEN_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"WARDEN_METRICS_LISTEN"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		srv, err := NewServer(Config{
			PlatformHost: cctx.String("platform-host"),
			Token:        cctx.String("platform-token"),
			Actor:        cctx.String("actor"),
			Home:         cctx.String("home"),
			Scan:         cctx.String("scan"),
			ProfileBase:  cctx.String("profile-base"),
			RedisURL:     cctx.String("redis-url"),
			RequestRate:  cctx.Int("platform-rate-limit"),
			Logger:       logger,
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				logger.Error("failed to start metrics endpoint", "err", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("failed to run enforcement service: %w", err)
		}
		return nil
	},
}
