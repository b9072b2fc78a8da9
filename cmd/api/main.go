package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnvFiles(".env"); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      newHandler(cfg, pool, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serve(ctx, server, logger)
}

// newHandler wires repositories, services and handlers over the pool.
func newHandler(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) http.Handler {
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	wishlistRepo := repository.NewWishlistRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	carts := service.NewCartService(cartRepo, productRepo, logger)
	orders := service.NewOrderService(
		orderRepo,
		productRepo,
		cartRepo,
		carts,
		service.NewOrderNumberGenerator(cfg.Order.NumberPrefix),
		cfg.Order.NumberMaxAttempts,
		notify.NewLogNotifier(logger),
		logger,
	)
	wishlists := service.NewWishlistService(wishlistRepo, cartRepo, productRepo, logger)
	users := service.NewUserService(userRepo, logger)

	return router.New(
		router.Handlers{
			Products: handler.NewProductHandler(service.NewProductService(productRepo, logger), logger),
			Cart:     handler.NewCartHandler(carts, logger),
			Wishlist: handler.NewWishlistHandler(wishlists, logger),
			Orders:   handler.NewOrderHandler(orders, logger),
			Admin:    handler.NewAdminHandler(orders, users, logger),
		},
		router.Keys{APIKey: cfg.Auth.APIKey, AdminKey: cfg.Auth.AdminAPIKey},
		users,
		pool,
		logger,
	)
}

// serve runs the server until it fails or ctx is cancelled, then drains
// in-flight requests.
func serve(ctx context.Context, server *http.Server, logger zerolog.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("address", server.Addr).Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received, starting graceful shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server gracefully")
		if closeErr := server.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close server")
		}
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info().Msg("server shutdown completed")
	return nil
}
