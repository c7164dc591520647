// Package app wires stores, services and transport into one server.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"synonym_arena/internal/config"
	"synonym_arena/internal/db"
	"synonym_arena/internal/game"
	httpserver "synonym_arena/internal/http"
	"synonym_arena/internal/http/handlers"
	"synonym_arena/internal/repository"
	"synonym_arena/internal/service"
	"synonym_arena/internal/store"
	"synonym_arena/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	redis "github.com/redis/go-redis/v9"
)

const Version = "1.0.0"

type App struct {
	Engine *gin.Engine
	Hub    *ws.Hub
	Tokens *service.JWTManager

	relay *ws.Relay
	pool  *pgxpool.Pool
	rdb   *redis.Client
	log   *slog.Logger
}

type backends struct {
	queue    store.QueueStore
	sessions store.SessionStore
	content  service.ContentSource
	chains   handlers.ChainSource
	players  service.PlayerStore
	matches  interface {
		service.MatchStore
		handlers.MatchHistory
	}
	solo service.SoloStore
}

// New builds the server. Empty DatabaseURL keeps players and words in
// memory; empty RedisAddr keeps the queue and sessions in memory and
// disables the cross-instance relay.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	clock := clockwork.NewRealClock()
	a := &App{log: log, Tokens: service.NewJWTManager(cfg.JWTSecret)}

	var b backends
	if cfg.DatabaseURL != "" {
		a.pool = db.Connect(cfg.DatabaseURL)
		b.content = repository.NewWordRepository(a.pool)
		b.chains = repository.NewChainRepository(a.pool)
		b.players = repository.NewPlayerRepository(a.pool, cfg.DefaultRating)
		b.matches = repository.NewMatchRepository(a.pool, cfg.DefaultRating)
		b.solo = repository.NewSoloGameRepository(a.pool, cfg.DefaultRating)
	} else {
		words, err := game.LoadSeedWords()
		if err != nil {
			return nil, fmt.Errorf("load seed words: %w", err)
		}
		chains, err := game.LoadSeedChains()
		if err != nil {
			return nil, fmt.Errorf("load seed chains: %w", err)
		}
		players := store.NewMemoryPlayers(clock, cfg.DefaultRating)
		b.content, b.chains = words, chains
		b.players, b.matches, b.solo = players, players, players
		log.Warn("DATABASE_URL not set, ratings are kept in memory")
	}

	a.Hub = ws.NewHub(cfg.InstanceID, log)
	if cfg.RedisAddr != "" {
		a.rdb = db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		b.queue = store.NewRedisQueue(a.rdb, clock, cfg.QueueTTL)
		b.sessions = store.NewRedisSessionStore(a.rdb, cfg.SessionTTL)
		a.relay = ws.NewRelay(a.rdb, a.Hub, log)
	} else {
		b.queue = store.NewMemoryQueue(clock, cfg.QueueTTL)
		b.sessions = store.NewMemorySessionStore(clock, cfg.SessionTTL)
		log.Warn("REDIS_ADDR not set, running a single in-memory instance")
	}

	ratings := service.NewRatingService(b.matches, log)
	rounds := service.NewRoundService(service.RoundServiceConfig{
		Sessions:   b.sessions,
		Content:    b.content,
		Notifier:   a.Hub,
		Ratings:    ratings,
		Clock:      clock,
		StartDelay: cfg.StartDelay,
		Logger:     log,
	})
	dispatcher := ws.NewDispatcher(ws.DispatcherConfig{
		Matchmaking: service.NewMatchmakingService(b.queue, rounds, clock, log),
		Rounds:      rounds,
		Disconnect:  service.NewDisconnectService(b.queue, b.sessions, a.Hub, log),
		Notifier:    a.Hub,
		// без секрета токенов нет, поэтому доверяем user_id клиента
		TrustClientUserID: !a.Tokens.Enabled() && !cfg.RequireAuth,
		Logger:            log,
	})

	checks := map[string]handlers.Check{}
	if a.pool != nil {
		checks["database"] = a.pool.Ping
	}
	if a.rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return a.rdb.Ping(ctx).Err() }
	}

	a.Engine = gin.New()
	a.Engine.Use(gin.Recovery())
	httpserver.RegisterRoutes(a.Engine, httpserver.Deps{
		Handler: handlers.NewHandler(b.content, b.chains, b.players, b.matches, service.NewSoloService(b.solo), log),
		Health:  handlers.NewHealthHandler(checks, a.Hub.Len, Version),
		WS: handlers.NewWSHandler(handlers.WSConfig{
			Hub:           a.Hub,
			Dispatcher:    dispatcher,
			Tokens:        a.Tokens,
			RequireAuth:   cfg.RequireAuth,
			AllowedOrigin: cfg.AllowedOrigin,
			Logger:        log,
		}),
		Tokens:        a.Tokens,
		Redis:         a.rdb,
		APIRateLimit:  cfg.APIRateLimit,
		APIRateWindow: cfg.APIRateWindow,
	})
	return a, nil
}

// RunRelay blocks delivering pushes from other instances. It returns at once
// in single-instance mode.
func (a *App) RunRelay(ctx context.Context) error {
	if a.relay == nil {
		return nil
	}
	return a.relay.Run(ctx)
}

// Close drops every game socket, then the backing connections.
func (a *App) Close(ctx context.Context) {
	a.Hub.CloseAll(ctx)
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn("close redis", "error", err)
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
