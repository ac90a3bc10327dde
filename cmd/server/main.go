// Package main is the standalone datacore API server.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"datacore/api"
	"datacore/core/rates"
	"datacore/db"
	"datacore/internal/config"
	"datacore/internal/logging"
)

const version = "0.1.0"

func main() {
	cfgPath := flag.String("config", "", "config file path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	config.Set(cfg)

	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	defer logging.Sync()

	snapshot, err := rates.LoadHCL(cfg.Rates.Path)
	if err != nil {
		logging.Fatal("failed to load rates", zap.Error(err))
	}

	database, err := db.New(cfg.DB.Path)
	if err != nil {
		logging.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		logging.Fatal("failed to migrate database", zap.Error(err))
	}

	listen := *addr
	if listen == "" {
		listen = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	server := api.NewServer(version, database, snapshot,
		api.WithBaselineCPU(cfg.Billing.BaselineCPU))

	logging.Info("datacore API listening",
		zap.String("addr", listen),
		zap.String("snapshot", snapshot.ContentHash()),
	)
	if err := http.ListenAndServe(listen, server); err != nil {
		logging.Fatal("server exited", zap.Error(err))
	}
}
