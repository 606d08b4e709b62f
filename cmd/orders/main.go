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

	// Order lines reference catalogue rows, so DATABASE_URL must name the
	// same database the products service uses.
	db, err := client.InitDBClient(cfg.Database, client.OrderModels...)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}

	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	productService := service.NewProductService(db, productRepo, categoryRepo, policies)
	orderService := service.NewOrderService(db, orderRepo, productRepo, policies.OrderTotal)
	orderLineService := service.NewOrderLineService(db, orderRepo, productRepo, policies.OrderTotal)

	srv := server.NewServer("orders", cfg, logger,
		handler.NewOrderHandler(orderService, orderLineService),
		handler.NewStockHandler(productService),
	)

	if err := server.Run(srv, cfg.HTTP.Address(), 30*time.Second); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
