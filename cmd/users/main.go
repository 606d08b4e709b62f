package main

import (
	"log/slog"
	"os"
	"tienda-services/internal/client"
	"tienda-services/internal/config"
	"tienda-services/internal/handler"
	"tienda-services/internal/repository"
	"tienda-services/internal/server"
	"tienda-services/internal/service"
	"time"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := client.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	policies, err := service.PoliciesFromConfig(cfg.Policy)
	if err != nil {
		slog.Error("invalid policy", "error", err)
		os.Exit(1)
	}

	db, err := client.InitDBClient(cfg.Database, client.UserModels...)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)

	tokens := service.NewTokenIssuer(cfg.Auth)
	userService := service.NewUserService(db, userRepo, roleRepo, tokens, policies)
	roleService := service.NewRoleService(roleRepo)

	srv := server.NewServer("users", cfg, logger,
		handler.NewUserHandler(userService),
		handler.NewRoleHandler(roleService),
	)

	if err := server.Run(srv, cfg.HTTP.Address(), 30*time.Second); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
