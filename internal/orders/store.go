package orders

import "context"

// Store membuka satu transaksi per request. fn yang return error -> rollback semua tulisan.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx adalah operasi yang dipakai workflow di dalam satu transaksi.
// Lookup yang tidak menemukan baris return ErrNotFound.
type Tx interface {
	Drink(ctx context.Context, id int64) (Drink, error)
	Ingredient(ctx context.Context, id int64) (Ingredient, error)
	InsertOrder(ctx context.Context, o *Order) error
	Recipe(ctx context.Context, drinkID int64) ([]RecipeLine, error)

	// LockStock mengunci baris inventory (FOR UPDATE) dan return quantity saat ini.
	LockStock(ctx context.Context, ingredientID int64) (float64, error)
	// ConsumeStock mengurangi stok; return quantity setelah dikurangi.
	ConsumeStock(ctx context.Context, ingredientID int64, amount float64) (float64, error)

	OrderDetails(ctx context.Context, orderID int64) (OrderDetails, error)
}

// Catalog adalah sisi read-only (projection) untuk endpoint listing.
type Catalog interface {
	ListDrinks(ctx context.Context) ([]Drink, error)
	ListIngredients(ctx context.Context) ([]Ingredient, error)
	ListOrders(ctx context.Context) ([]OrderDetails, error)
	ListRecipes(ctx context.Context) ([]RecipeDetails, error)
	ListInventory(ctx context.Context) ([]InventoryDetails, error)
	OrderByID(ctx context.Context, id int64) (OrderDetails, error)
	StockLevels(ctx context.Context, ingredientIDs []int64) ([]StockLevel, error)
}
