package router

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Products *handler.ProductHandler
	Cart     *handler.CartHandler
	Wishlist *handler.WishlistHandler
	Orders   *handler.OrderHandler
	Admin    *handler.AdminHandler
}

// Keys holds the shared secrets checked by the auth middleware.
type Keys struct {
	APIKey   string
	AdminKey string
}

// Pinger reports whether a backing store is reachable. *pgxpool.Pool
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New creates the HTTP router with all routes and middleware configured.
// Customer routes only admit identities users reports as active. A nil db
// makes /health report healthy without checking the database.
func New(h Handlers, keys Keys, users middleware.ActiveUsers, db Pinger, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health(db))

	mux.HandleFunc("GET /api/products", h.Products.GetAll)
	mux.HandleFunc("GET /api/products/{id}", h.Products.GetByID)

	user := middleware.UserIdentity(users, logger)
	userRoute := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, user(fn))
	}

	userRoute("GET /api/cart", h.Cart.Get)
	userRoute("DELETE /api/cart", h.Cart.Clear)
	userRoute("GET /api/cart/summary", h.Cart.Summary)
	userRoute("POST /api/cart/validate", h.Cart.Validate)
	userRoute("POST /api/cart/items", h.Cart.AddItem)
	userRoute("PUT /api/cart/items/{id}", h.Cart.UpdateItem)
	userRoute("DELETE /api/cart/items/{id}", h.Cart.RemoveItem)

	userRoute("GET /api/wishlist", h.Wishlist.List)
	userRoute("POST /api/wishlist", h.Wishlist.Add)
	userRoute("DELETE /api/wishlist", h.Wishlist.Clear)
	userRoute("DELETE /api/wishlist/{id}", h.Wishlist.Remove)
	userRoute("POST /api/wishlist/{id}/move-to-cart", h.Wishlist.MoveToCart)
	userRoute("DELETE /api/wishlist/products/{productId}", h.Wishlist.RemoveByProduct)
	userRoute("GET /api/wishlist/check/{productId}", h.Wishlist.Check)

	userRoute("POST /api/orders", h.Orders.Create)
	userRoute("GET /api/orders", h.Orders.List)
	userRoute("GET /api/orders/{number}", h.Orders.Get)
	userRoute("POST /api/orders/{number}/cancel", h.Orders.Cancel)

	admin := middleware.AdminAuth(keys.AdminKey, logger)
	adminRoute := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, admin(fn))
	}

	adminRoute("GET /api/admin/orders", h.Admin.ListOrders)
	adminRoute("GET /api/admin/orders/{number}", h.Admin.GetOrder)
	adminRoute("PUT /api/admin/orders/{number}/status", h.Admin.UpdateStatus)
	adminRoute("POST /api/admin/orders/bulk-status", h.Admin.BulkUpdateStatus)
	adminRoute("DELETE /api/admin/users/{id}", h.Admin.DeleteUser)

	// Outermost first: Recovery -> RequestID -> Logging -> CORS -> APIKeyAuth
	var handler http.Handler = mux
	handler = middleware.APIKeyAuth(keys.APIKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unhealthy"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	}
}
