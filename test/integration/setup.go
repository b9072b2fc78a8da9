package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testAPIKey   = "test-api-key"
	testAdminKey = "test-admin-key"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
}

// SetupTestDB creates a PostgreSQL test container, a pool on it and the
// application schema.
func SetupTestDB(t testing.TB) *TestDB {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{Container: pgContainer, Pool: pool}
}

// Services bundles the wired service layer over a pool.
type Services struct {
	Products  service.ProductService
	Cart      service.CartService
	Orders    service.OrderService
	Wishlists service.WishlistService
	Users     service.UserService
}

// NewServices wires repositories and services the way cmd/api does.
func NewServices(pool *pgxpool.Pool) *Services {
	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	wishlistRepo := repository.NewWishlistRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	cart := service.NewCartService(cartRepo, productRepo, logger)
	return &Services{
		Products: service.NewProductService(productRepo, logger),
		Cart:     cart,
		Orders: service.NewOrderService(orderRepo, productRepo, cartRepo, cart,
			service.NewOrderNumberGenerator("ORD"), 5, notify.NewLogNotifier(logger), logger),
		Wishlists: service.NewWishlistService(wishlistRepo, cartRepo, productRepo, logger),
		Users:     service.NewUserService(userRepo, logger),
	}
}

// NewServer builds the full HTTP stack over the services.
func NewServer(svc *Services, pool *pgxpool.Pool) http.Handler {
	logger := zerolog.Nop()
	return router.New(
		router.Handlers{
			Products: handler.NewProductHandler(svc.Products, logger),
			Cart:     handler.NewCartHandler(svc.Cart, logger),
			Wishlist: handler.NewWishlistHandler(svc.Wishlists, logger),
			Orders:   handler.NewOrderHandler(svc.Orders, logger),
			Admin:    handler.NewAdminHandler(svc.Orders, svc.Users, logger),
		},
		router.Keys{APIKey: testAPIKey, AdminKey: testAdminKey},
		svc.Users,
		pool,
		logger,
	)
}

// SeedProduct describes one catalogue row.
type SeedProduct struct {
	ID        string
	Name      string
	Price     string
	SalePrice *string
	Stock     int
	Inactive  bool
}

// DefaultProducts is the catalogue most tests start from.
var DefaultProducts = []SeedProduct{
	{ID: "P001", Name: "Kettle", Price: "24.99", Stock: 10},
	{ID: "P002", Name: "Teapot", Price: "40.00", SalePrice: strPtr("30.00"), Stock: 5},
	{ID: "P003", Name: "Mug", Price: "8.50", Stock: 1},
	{ID: "P004", Name: "Discontinued Cup", Price: "5.00", Stock: 20, Inactive: true},
	{ID: "P005", Name: "Saucer", Price: "4.00", Stock: 0},
}

func strPtr(s string) *string { return &s }

// SeedProducts inserts the given products.
func SeedProducts(t testing.TB, pool *pgxpool.Pool, products []SeedProduct) {
	t.Helper()

	ctx := context.Background()
	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, price, sale_price, stock_quantity, is_active)
			 VALUES ($1, $2, $3::numeric, $4::numeric, $5, $6)`,
			p.ID, p.Name, p.Price, p.SalePrice, p.Stock, !p.Inactive,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.ID, err)
		}
	}
}

// SeedUser inserts an active user and returns its id.
func SeedUser(t testing.TB, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO users (id, email, name) VALUES ($1, $2, $3)",
		id, id.String()+"@example.com", "Test User",
	)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return id
}

// StockOf returns the current stock of a product.
func StockOf(t testing.TB, pool *pgxpool.Pool, productID string) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		"SELECT stock_quantity FROM products WHERE id = $1", productID).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock of %s: %v", productID, err)
	}
	return stock
}

// SetProduct overwrites the stock and active flag of a product.
func SetProduct(t testing.TB, pool *pgxpool.Pool, productID string, stock int, active bool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"UPDATE products SET stock_quantity = $2, is_active = $3 WHERE id = $1",
		productID, stock, active)
	if err != nil {
		t.Fatalf("failed to update product %s: %v", productID, err)
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t testing.TB, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "cart_items", "wishlists", "products", "users"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
