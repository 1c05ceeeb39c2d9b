package orders

import "time"

type Drink struct {
	ID    int64   `json:"-"`
	Name  string  `json:"name_drink"`
	Price float64 `json:"price"`
}

type Ingredient struct {
	ID      int64   `json:"id_ingredient"`
	Name    string  `json:"name_ingredient"`
	Unit    string  `json:"unit"`
	Portion float64 `json:"portion"` // dipakai saat dipilih sebagai extra
}

// RecipeLine adalah satu baris drink_ingredient: berapa banyak ingredient per 1 drink.
type RecipeLine struct {
	DrinkID      int64   `json:"id_drink"`
	IngredientID int64   `json:"id_ingredient"`
	Amount       float64 `json:"amount"`
}

type StockLevel struct {
	IngredientID int64   `json:"id_ingredient"`
	Quantity     float64 `json:"quantity"`
}

type Order struct {
	ID                int64
	DrinkID           int64
	ExtraIngredientID *int64
	SugarAmount       int
	PaymentStatus     PaymentStatus
	CreatedAt         time.Time
}

// ---- Projections (joined rows) ----

type OrderDetails struct {
	DrinkID       int64         `json:"id_drink"`
	OrderID       int64         `json:"id_order"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	Drink         Drink         `json:"drink"`
	Ingredient    *Ingredient   `json:"ingredient"`
}

type RecipeDetails struct {
	IngredientID int64      `json:"id_ingredient"`
	DrinkID      int64      `json:"id_drink"`
	Amount       float64    `json:"amount"`
	Drink        Drink      `json:"drink"`
	Ingredient   Ingredient `json:"ingredient"`
}

type InventoryDetails struct {
	IngredientID int64      `json:"id_ingredient"`
	Quantity     float64    `json:"quantity"`
	Ingredient   Ingredient `json:"ingredient"`
}
