package main

import (
	"github.com/sirupsen/logrus"

	"studyhub/internal/config"
	"studyhub/internal/database"
	"studyhub/internal/server"
)

func main() {
	cfg := config.Load()
	if cfg.Env == "dev" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	db, err := database.Connect(cfg.DSN)
	if err != nil {
		logrus.Fatalf("db connect error: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db, "migrations"); err != nil {
		logrus.Fatalf("migrations error: %v", err)
	}

	if err := server.New(cfg, db).Run(); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
