package main

import (
	"fmt"
	"log"

	"github.com/hirepath/admin-console/internal/mockapi"
	"github.com/hirepath/admin-console/pkg/config"
	"github.com/hirepath/admin-console/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	server, err := mockapi.New(cfg, logr, nil)
	if err != nil {
		logr.Sugar().Fatalw("failed to build fixture server", "error", err)
	}

	addr := fmt.Sprintf(":%d", cfg.MockAPI.Port)
	logr.Sugar().Infow("fixture backend starting", "addr", addr, "env", cfg.Env,
		"seed_users", cfg.MockAPI.SeedUsers, "admin_email", cfg.MockAPI.AdminEmail)
	if err := server.Router().Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
