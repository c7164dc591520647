package db

import (
	"context"
	"time"

	"synonym_arena/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
)

func Connect(dsn string) *pgxpool.Pool {
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := db.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected")
	return db
}

// ConnectRedis opens the client shared by the queue, session store, relay
// and rate limiter. An unreachable Redis is fatal.
func ConnectRedis(addr, password string, db int) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to ping redis", "addr", addr, "error", err)
	}

	logger.Info("redis connected", "addr", addr)
	return rdb
}
