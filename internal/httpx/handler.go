package httpx

import (
	"context"
	kafkax "github.com/ariefcatur/go-coffee-orders/internal/kafka"
	"github.com/ariefcatur/go-coffee-orders/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"time"
)

// Schema adalah bagian DDL yang dibutuhkan POST /setup.
type Schema interface {
	Reset(ctx context.Context) error
	Seed(ctx context.Context) error
}

type Handler struct {
	Placer    *orders.Placer
	Catalog   orders.Catalog
	Schema    Schema
	Redis     *redis.Client    // nil -> tanpa cache & tanpa idempotency
	Publisher kafkax.Publisher // nil -> event tidak dikirim
	Limiter   *RateLimiter     // nil -> POST /Orders tanpa rate limit
	CacheTTL  time.Duration    // 0 -> listing katalog selalu dari DB
	Service   string
	Log       zerolog.Logger
}

// Register memasang route di root dan (salinan) di /v1.
func (h *Handler) Register(r chi.Router) {
	h.routes(r)
	r.Route("/v1", h.routes)
}

func (h *Handler) routes(r chi.Router) {
	r.Post("/setup", h.setup)
	r.Get("/Drinks", h.listDrinks)
	r.Get("/Ingredients", h.listIngredients)
	r.Get("/IngredintDrink", h.listRecipes)
	r.Get("/Inventory", h.listInventory)

	r.Get("/Orders", h.listOrders)
	r.Get("/Orders/{id}", h.getOrder)
	r.Group(func(r chi.Router) {
		if h.Limiter != nil {
			r.Use(h.Limiter.Middleware)
		}
		r.Post("/Orders", h.createOrder)
	})
}
