package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetbot/internal/agent"
	"meetbot/internal/auth"
	"meetbot/internal/config"
	"meetbot/internal/database"
	"meetbot/internal/engine"
	"meetbot/internal/gcal"
	"meetbot/internal/notify"
	"meetbot/internal/server"
	"meetbot/internal/session"
	"meetbot/internal/shortener"
	"meetbot/internal/timeutil"
)

func main() {
	cfg := config.LoadFromEnv()

	db, err := database.New(cfg.DBPath)
	if err != nil {
		fatal("creating database", err)
	}
	defer db.Close()

	oauthConfig, err := gcal.LoadOAuthConfig(cfg.GoogleCredentialsFile, cfg.BaseURL, cfg.HTTPPort)
	if err != nil {
		fatal("loading Google OAuth credentials", err)
	}
	gate := auth.NewGate(oauthConfig, db)
	gcalClient := gcal.NewClient(oauthConfig, db)

	resolver, err := timeutil.NewResolver(cfg.Timezone)
	if err != nil {
		fatal("loading timezone", err)
	}

	extractor := initExtractor(cfg)
	if extractor == nil {
		fatal("configuring extractor", fmt.Errorf("ANTHROPIC_API_KEY is required"))
	}

	eng := engine.New(engine.Config{
		Sessions:    session.NewStore(agent.SystemPrompt),
		Extractor:   extractor,
		Gate:        gate,
		Scheduler:   gcalClient,
		Resolver:    resolver,
		Recorder:    db,
		Shortener:   initShortener(cfg),
		Notifier:    initNotifier(cfg),
		TurnTimeout: time.Duration(cfg.TurnTimeoutSecs) * time.Second,
	})

	srv := server.New(server.ServerConfig{
		DB:     db,
		Engine: eng,
		Gate:   gate,
		Port:   cfg.HTTPPort,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "HTTP server error: %v\n", err)
		}
	}()

	waitForShutdown(srv)
}

func initExtractor(cfg *config.Config) *agent.ClaudeExtractor {
	if cfg.AnthropicAPIKey == "" {
		return nil
	}
	extractor := agent.NewClaudeExtractor(agent.ExtractorConfig{
		APIKey:      cfg.AnthropicAPIKey,
		Model:       cfg.ClaudeModel,
		Temperature: cfg.ClaudeTemperature,
	})
	fmt.Println("Slot extractor configured (tool-calling mode)")
	return extractor
}

func initShortener(cfg *config.Config) engine.Shortener {
	b := shortener.NewBitlyShortener(cfg.BitlyAccessToken)
	if b == nil {
		fmt.Println("Bitly not configured, Meet links will be sent in full")
		return nil
	}
	fmt.Println("Bitly link shortener configured")
	return b
}

func initNotifier(cfg *config.Config) engine.Notifier {
	n := notify.NewResendNotifier(cfg.ResendAPIKey, cfg.EmailFrom)
	if n == nil || !n.IsConfigured() {
		fmt.Println("Resend not configured, confirmation emails disabled")
		return nil
	}
	fmt.Println("Resend email notifier configured")
	return n
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}

func waitForShutdown(srv *server.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv.Shutdown(ctx)
}
