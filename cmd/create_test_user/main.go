package main

import (
	"context"
	"flag"
	"fmt"

	"synonym_arena/internal/config"
	"synonym_arena/internal/db"
	"synonym_arena/internal/domain"
	"synonym_arena/internal/logger"
	"synonym_arena/internal/repository"
	"synonym_arena/internal/service"
)

func main() {
	userID := flag.String("user", "test-user", "user id to create")
	name := flag.String("name", "Tester", "display name")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, false)

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET not set")
	}

	pool := db.Connect(cfg.DatabaseURL)
	defer pool.Close()

	repo := repository.NewPlayerRepository(pool, cfg.DefaultRating)
	ctx := context.Background()

	p := &domain.Player{UserID: *userID, DisplayName: *name}
	if err := repo.UpsertPlayer(ctx, p); err != nil {
		logger.Fatal("upsert player failed", "error", err)
	}
	logger.Info("player ready", "user_id", p.UserID, "display_name", p.DisplayName, "rating", p.Rating, "solo_rating", p.SoloRating)

	token, err := service.NewJWTManager(cfg.JWTSecret).Generate(p.UserID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Println(token)
}
