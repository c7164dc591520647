package main

import (
	"flag"
	"fmt"
	"os"

	"synonym_arena/internal/logger"
	"synonym_arena/internal/migrations"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	log := logger.Init(os.Getenv("LOG_LEVEL"), false)

	apply := flag.Bool("apply", false, "apply pending migrations")
	down := flag.Bool("down", false, "roll back one migration")
	flag.Parse()

	if !*apply && !*down {
		files, err := migrations.Files()
		if err != nil {
			logger.Fatal("list migrations", "error", err)
		}
		for _, name := range files {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	m, err := migrations.New(dsn, log)
	if err != nil {
		logger.Fatal("open migrator", "error", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("close migrator", "error", err)
		}
	}()

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil {
		log.Error("migration failed", "error", err)
		return
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Warn("read version", "error", err)
		return
	}
	fmt.Printf("version=%d dirty=%v\n", version, dirty)
}
