package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/duelhaven/cardbattle-api/internal/catalog"
	"github.com/duelhaven/cardbattle-api/internal/errors"
	"github.com/duelhaven/cardbattle-api/internal/handlers/httpapi"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/battle"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/challenge"
	"github.com/duelhaven/cardbattle-api/internal/orchestrators/player"
	"github.com/duelhaven/cardbattle-api/internal/pkg/clock"
	"github.com/duelhaven/cardbattle-api/internal/pkg/idgen"
	"github.com/duelhaven/cardbattle-api/internal/pkg/keymutex"
	"github.com/duelhaven/cardbattle-api/internal/pkg/rng"
	redisclient "github.com/duelhaven/cardbattle-api/internal/redis"
	"github.com/duelhaven/cardbattle-api/internal/repositories/battles"
	"github.com/duelhaven/cardbattle-api/internal/repositories/players"
)

// serverConfig is populated from the environment
type serverConfig struct {
	Addr      string `env:"ADDR" envDefault:":8080"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	CardsFile string `env:"CARDS_FILE" envDefault:"data/cards.json"`

	// RNGSeed pins the random source for reproducible runs; 0 seeds from
	// the clock
	RNGSeed int64 `env:"RNG_SEED" envDefault:"0"`

	MaxTurns    int32 `env:"MAX_TURNS" envDefault:"100"`
	TokenReward int32 `env:"TOKEN_REWARD" envDefault:"50"`
	XPReward    int32 `env:"XP_REWARD" envDefault:"100"`

	ChallengeTimeout time.Duration `env:"CHALLENGE_TIMEOUT" envDefault:"60s"`
	ExpirySweep      time.Duration `env:"EXPIRY_SWEEP" envDefault:"5s"`

	StarterCards int   `env:"STARTER_CARDS" envDefault:"3"`
	DailyTokens  int32 `env:"DAILY_TOKENS" envDefault:"50"`
	DeckLimit    int   `env:"DECK_LIMIT" envDefault:"5"`
	PackCost     int32 `env:"PACK_COST" envDefault:"100"`
	PackSize     int   `env:"PACK_SIZE" envDefault:"3"`

	ArchiveTTL time.Duration `env:"ARCHIVE_TTL" envDefault:"168h"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the card battle HTTP server with all configured services.`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := env.ParseAs[serverConfig]()
	if err != nil {
		return errors.Wrap(err, "failed to parse environment")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("received shutdown signal, gracefully stopping")
		cancel()
	}()

	seed := cfg.RNGSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rngSource := rng.NewSeeded(seed)
	clk := clock.New()

	cards, err := catalog.Load(&catalog.Config{Path: cfg.CardsFile, RNG: rngSource})
	if err != nil {
		return errors.Wrap(err, "failed to load card catalog")
	}
	slog.Info("card catalog loaded", "path", cfg.CardsFile, "cards", cards.Size())

	redisConn, err := redisclient.NewClient(cfg.RedisAddr, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create redis client")
	}
	if err := redisConn.Ping(ctx).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "failed to reach redis")
	}

	playerRepo, err := players.NewRedisRepository(&players.Config{Client: redisConn})
	if err != nil {
		return errors.Wrap(err, "failed to create player repository")
	}

	// one lock map for every writer of player records
	playerLocks := keymutex.New()

	registry := battles.NewInMemory()
	archiver, err := battles.NewRedisArchiver(&battles.ArchiveConfig{
		Client: redisConn,
		TTL:    cfg.ArchiveTTL,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create battle archiver")
	}

	battleService, err := battle.NewOrchestrator(&battle.Config{
		PlayerRepo:  playerRepo,
		Registry:    registry,
		Catalog:     cards,
		IDGenerator: idgen.NewUUID("battle"),
		Clock:       clk,
		RNG:         rngSource,
		Archiver:    archiver,
		MaxTurns:    cfg.MaxTurns,
		TokenReward: cfg.TokenReward,
		XPReward:    cfg.XPReward,
		PlayerLocks: playerLocks,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create battle orchestrator")
	}

	challengeService, err := challenge.NewOrchestrator(&challenge.Config{
		PlayerRepo:  playerRepo,
		Battles:     battleService,
		Registry:    registry,
		IDGenerator: idgen.NewUUID("challenge"),
		Clock:       clk,
		Timeout:     cfg.ChallengeTimeout,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create challenge coordinator")
	}

	profileService, err := player.NewOrchestrator(&player.Config{
		PlayerRepo:   playerRepo,
		Catalog:      cards,
		Clock:        clk,
		StarterCards: cfg.StarterCards,
		DailyTokens:  cfg.DailyTokens,
		DeckLimit:    cfg.DeckLimit,
		PackCost:     cfg.PackCost,
		PackSize:     cfg.PackSize,
		PlayerLocks:  playerLocks,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create profile service")
	}

	handler, err := httpapi.NewHandler(&httpapi.Config{
		Players:    profileService,
		Challenges: challengeService,
		Battles:    battleService,
		Catalog:    cards,
		Archive:    archiver,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create HTTP handler")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// sweep overdue challenges so unanswered invitations expire on time
	go func() {
		ticker := time.NewTicker(cfg.ExpirySweep)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				expired, err := challengeService.ExpireOverdue(ctx)
				if err != nil {
					slog.Warn("challenge expiry sweep failed", "error", err)
					continue
				}
				if expired > 0 {
					slog.Info("expired overdue challenges", "count", expired)
				}
			}
		}
	}()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- errors.Wrap(err, "failed to serve")
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed, closing", "error", err)
			return srv.Close()
		}
		slog.Info("server stopped gracefully")
		return nil
	case err := <-errChan:
		return err
	}
}

// requestLogger logs one line per request with slog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
