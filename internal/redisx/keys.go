package redisx

import "time"

const (
	// Idempotency create order: idem:order:create:{Idempotency-Key} -> id_order
	KeyIdemOrderCreate = "idem:order:create:%s"

	// Cache hasil listing katalog: projection:{name} -> JSON array
	KeyProjection = "projection:%s"
	// Generasi projection, naik setiap invalidate: projection:gen:{name} -> int
	KeyProjectionGen = "projection:gen:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

// Projection katalog yang boleh di-cache. Orders & inventory berubah di setiap order, tidak di-cache.
const (
	ProjDrinks      = "drinks"
	ProjIngredients = "ingredients"
	ProjRecipes     = "recipes"
)

var CatalogProjections = []string{ProjDrinks, ProjIngredients, ProjRecipes}

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
