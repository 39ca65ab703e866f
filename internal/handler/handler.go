// Package handler maps the REST surface onto the domain services.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joralabs/jora-api/internal/auth"
	"github.com/joralabs/jora-api/internal/domain/b2b"
	"github.com/joralabs/jora-api/internal/domain/cart"
	"github.com/joralabs/jora-api/internal/domain/catalog"
	"github.com/joralabs/jora-api/internal/domain/order"
	"github.com/joralabs/jora-api/internal/domain/user"
)

// Handler holds every dependency the REST surface needs.
type Handler struct {
	tokens     *auth.TokenManager
	users      user.Repository
	addresses  user.AddressRepository
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	carts      *cart.Service
	wishlists  cart.WishlistRepository
	orders     *order.Service
	b2b        *b2b.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	tokens *auth.TokenManager,
	users user.Repository,
	addresses user.AddressRepository,
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	carts *cart.Service,
	wishlists cart.WishlistRepository,
	orders *order.Service,
	b2bSvc *b2b.Service,
) *Handler {
	return &Handler{
		tokens:     tokens,
		users:      users,
		addresses:  addresses,
		products:   products,
		categories: categories,
		carts:      carts,
		wishlists:  wishlists,
		orders:     orders,
		b2b:        b2bSvc,
	}
}

// Routes builds the /api router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Get("/{slug}", h.getProduct)
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth, h.RequireAdmin)
			r.Post("/", h.createProduct)
			r.Put("/{id}", h.updateProduct)
			r.Delete("/{id}", h.deleteProduct)
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.With(h.RequireAuth, h.RequireAdmin).Post("/", h.createCategory)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Get("/", h.getCart)
		r.Post("/add", h.addToCart)
		r.Put("/{id}", h.updateCartItem)
		r.Delete("/{id}", h.removeFromCart)
		r.Delete("/", h.clearCart)
	})

	r.Route("/wishlist", func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Get("/", h.listWishlist)
		r.Post("/", h.addToWishlist)
		r.Delete("/{id}", h.removeFromWishlist)
	})

	r.Route("/addresses", func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Get("/", h.listAddresses)
		r.Post("/", h.createAddress)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Post("/", h.placeOrder)
		r.Get("/", h.listOrders)
		r.Get("/{id}", h.getOrder)
		r.Post("/{id}/cancel", h.cancelOrder)
		r.With(h.RequireAdmin).Put("/{id}/status", h.updateOrderStatus)
	})

	r.Route("/b2b", func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Post("/register", h.registerB2B)
		r.Get("/profile", h.getB2BProfile)
		r.With(h.RequireAdmin).Put("/{id}/approve", h.approveB2B)
	})

	return r
}
