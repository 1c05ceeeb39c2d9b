package httpx

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-coffee-orders/internal/redisx"
	"net/http"
	"strconv"
	"time"
)

func (h *Handler) listDrinks(w http.ResponseWriter, r *http.Request) {
	serveCatalog(h, w, r, redisx.ProjDrinks, h.Catalog.ListDrinks)
}

func (h *Handler) listIngredients(w http.ResponseWriter, r *http.Request) {
	serveCatalog(h, w, r, redisx.ProjIngredients, h.Catalog.ListIngredients)
}

func (h *Handler) listRecipes(w http.ResponseWriter, r *http.Request) {
	serveCatalog(h, w, r, redisx.ProjRecipes, h.Catalog.ListRecipes)
}

// Inventory & orders berubah setiap order (dan restock dari luar), selalu baca DB.
func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, h.Catalog.ListInventory)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, h.Catalog.ListOrders)
}

func serveList[T any](h *Handler, w http.ResponseWriter, r *http.Request, load func(context.Context) ([]T, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := load(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

// serveCatalog: cache Redis dulu kalau CacheTTL > 0. Miss -> baca DB lalu isi cache,
// tapi hanya kalau tidak ada invalidate sejak generasi dibaca.
// Redis error tidak menggagalkan request, DB tetap jadi kebenaran.
func serveCatalog[T any](h *Handler, w http.ResponseWriter, r *http.Request, name string, load func(context.Context) ([]T, error)) {
	if h.Redis == nil || h.CacheTTL <= 0 {
		serveList(h, w, r, load)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var cached []T
	found, err := redisx.GetJSON(ctx, h.Redis, fmt.Sprintf(redisx.KeyProjection, name), &cached)
	if err != nil {
		h.Log.Warn().Err(err).Str("projection", name).Msg("cache read failed")
	}
	if found {
		w.Header().Set("X-Cache", "HIT")
		writeJSON(w, http.StatusOK, cached)
		return
	}

	gen, genErr := redisx.Generation(ctx, h.Redis, name)
	items, err := load(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	if genErr == nil {
		if _, err := redisx.FillIfCurrent(ctx, h.Redis, name, gen, items, h.CacheTTL); err != nil {
			h.Log.Warn().Err(err).Str("projection", name).Msg("cache write failed")
		}
	}
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, items)
}

// setup: drop + create ulang semua tabel. ?seed=true mengisi katalog demo.
func (h *Handler) setup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	seed := false
	if v := r.URL.Query().Get("seed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "seed must be a boolean", Field: "seed"})
			return
		}
		seed = b
	}

	if err := h.Schema.Reset(ctx); err != nil {
		h.fail(w, r, fmt.Errorf("reset schema: %w", err))
		return
	}
	msg := "Database tables recreated"
	if seed {
		if err := h.Schema.Seed(ctx); err != nil {
			h.fail(w, r, fmt.Errorf("seed: %w", err))
			return
		}
		msg = "Database tables recreated and seeded"
	}
	// generasi naik -> fill dari reader yang membaca DB sebelum reset dibuang
	h.invalidate(ctx, redisx.CatalogProjections...)
	h.Log.Warn().Bool("seed", seed).Msg("database reset")
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (h *Handler) invalidate(ctx context.Context, names ...string) {
	if h.Redis == nil {
		return
	}
	if err := redisx.Invalidate(ctx, h.Redis, names...); err != nil {
		h.Log.Warn().Err(err).Strs("projections", names).Msg("cache invalidate failed")
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, body := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.Log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, code, body)
}
