package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/custodia-labs/chat-login/internal/adapters/driven/network"
	"github.com/custodia-labs/chat-login/internal/adapters/driven/oauth"
	"github.com/custodia-labs/chat-login/internal/adapters/driven/rocketchat"
	"github.com/custodia-labs/chat-login/internal/adapters/driving/cli"
	"github.com/custodia-labs/chat-login/internal/config"
	"github.com/custodia-labs/chat-login/internal/runtime"
	"github.com/custodia-labs/chat-login/internal/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "chat-login", version, cfg.OTelEndpoint)
	if err != nil {
		log.Printf("Warning: tracing disabled: %v", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Printf("Warning: tracing shutdown: %v", err)
			}
		}()
	}

	root := cli.NewRootCommand(cli.Options{
		Version: version,
		Config:  cfg,
		Open:    openEnv(logger),
		Out:     os.Stdout,
		Logger:  logger,
		Spinner: term.IsTerminal(int(os.Stdout.Fd())),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// newLogger writes structured logs to stderr so command output stays clean
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// openEnv wires the adapters for one chat server
func openEnv(logger *slog.Logger) cli.EnvOpener {
	return func(ctx context.Context, base *config.Config, serverURL string) (*cli.Env, error) {
		cfg := *base
		cfg.ServerURL = serverURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		client, err := rocketchat.NewClient(rocketchat.Config{
			ServerURL: serverURL,
			Timeout:   cfg.HTTPTimeout,
			AppName:   cfg.PushAppName,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}

		stores, err := runtime.Open(ctx, &cfg, logger)
		if err != nil {
			return nil, err
		}

		return &cli.Env{
			Client: client,
			Connectivity: network.NewProbe(network.ProbeConfig{
				Addr:    cfg.ConnectivityProbeAddr,
				Timeout: cfg.ConnectivityProbeTimeout,
				Logger:  logger,
			}),
			URLBuilder: oauth.NewURLBuilder(oauth.URLBuilderConfig{GitLabURL: cfg.GitLabURL}),
			Tokens:     stores.Tokens,
			Local:      stores.Local,
			Accounts:   stores.Accounts,
			States:     stores.States,
			Cleaner:    stores.Cleaner,
			Store:      stores,
			Close:      stores.Close,
		}, nil
	}
}
