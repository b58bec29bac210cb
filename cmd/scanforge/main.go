package main

import (
	"log"
	"os"

	"github.com/forgelabs/scanforge/internal/api"
	"github.com/forgelabs/scanforge/internal/config"
	"github.com/forgelabs/scanforge/internal/coordinator"
	"github.com/forgelabs/scanforge/internal/scanner"
	"github.com/forgelabs/scanforge/internal/store"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("scanforge: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"worker_bin", cfg.WorkerBin,
	)

	sc := scanner.Default()
	if cfg.RulesPath != "" {
		rules, err := scanner.LoadRules(cfg.RulesPath)
		if err != nil {
			log.Fatalf("failed to load rules: %v", err)
		}
		sc, err = scanner.New(rules)
		if err != nil {
			log.Fatalf("failed to compile rules: %v", err)
		}
		logger.Info("loaded rules file", "path", cfg.RulesPath, "rules", len(rules))
	}

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	inline := coordinator.NewInline(sc.Work, cfg.DefaultTimeout, logger)
	isolated := coordinator.NewIsolated(cfg.WorkerBin, cfg.DefaultTimeout, logger)

	srv := api.NewServer(cfg.ListenAddr, db, inline, isolated, logger)

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
