package orders

import (
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"math"
	"sort"
)

const (
	DefaultSugarIngredientID int64   = 6
	DefaultSugarGramsPerUnit float64 = 5 // gram per sendok
)

// Sumber pemakaian stok, dicatat di warning / event.
const (
	UseRecipe = "recipe"
	UseExtra  = "extra"
	UseSugar  = "sugar"
)

// MissingStockPolicy menentukan apa yang terjadi kalau ingredient yang dibutuhkan tidak punya baris inventory.
type MissingStockPolicy string

const (
	MissingStockWarn   MissingStockPolicy = "warn"
	MissingStockReject MissingStockPolicy = "reject"
)

func ParseMissingStockPolicy(s string) (MissingStockPolicy, error) {
	switch p := MissingStockPolicy(s); p {
	case MissingStockWarn, MissingStockReject:
		return p, nil
	case "":
		return MissingStockWarn, nil
	default:
		return "", fmt.Errorf("unknown missing stock policy %q", s)
	}
}

type PlaceOrderInput struct {
	DrinkID           int64  `json:"id_drink"`
	SugarAmount       int    `json:"sugar_amount"`
	ExtraIngredientID *int64 `json:"id_ingredient,omitempty"`
}

func (in PlaceOrderInput) Validate() error {
	if in.DrinkID <= 0 {
		return &ValidationError{Field: "id_drink", Reason: "must be a positive id"}
	}
	if in.SugarAmount < MinSugar || in.SugarAmount > MaxSugar {
		return &ValidationError{Field: "sugar_amount", Reason: fmt.Sprintf("must be between %d and %d", MinSugar, MaxSugar)}
	}
	if in.ExtraIngredientID != nil && *in.ExtraIngredientID <= 0 {
		return &ValidationError{Field: "id_ingredient", Reason: "must be a positive id"}
	}
	return nil
}

// Consumption adalah stok yang benar-benar dikurangi untuk satu ingredient.
type Consumption struct {
	IngredientID int64    `json:"id_ingredient"`
	Amount       float64  `json:"amount"`
	Remaining    float64  `json:"remaining"`
	Uses         []string `json:"uses"`
}

type Placement struct {
	Order    OrderDetails
	Consumed []Consumption
	Warnings []*StockError
}

type Placer struct {
	Store             Store
	SugarIngredientID int64
	SugarGramsPerUnit float64
	MissingStock      MissingStockPolicy
	Log               zerolog.Logger
}

func NewPlacer(store Store, log zerolog.Logger) *Placer {
	return &Placer{
		Store:             store,
		SugarIngredientID: DefaultSugarIngredientID,
		SugarGramsPerUnit: DefaultSugarGramsPerUnit,
		MissingStock:      MissingStockWarn,
		Log:               log.With().Str("component", "placer").Logger(),
	}
}

// PlaceOrder: validasi -> insert order -> kurangi stok (recipe, extra, sugar) -> reload, semua dalam 1 transaksi.
// Kalau ada langkah yang gagal, order & semua pengurangan stok ikut di-rollback.
func (p *Placer) PlaceOrder(ctx context.Context, in PlaceOrderInput) (Placement, error) {
	if err := in.Validate(); err != nil {
		return Placement{}, err
	}

	var out Placement
	err := p.Store.InTx(ctx, func(tx Tx) error {
		drink, err := tx.Drink(ctx, in.DrinkID)
		if errors.Is(err, ErrNotFound) {
			return &NotFoundError{Entity: "drink", ID: in.DrinkID}
		}
		if err != nil {
			return fmt.Errorf("load drink: %w", err)
		}

		var extra *Ingredient
		if in.ExtraIngredientID != nil {
			ing, err := tx.Ingredient(ctx, *in.ExtraIngredientID)
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{Entity: "ingredient", ID: *in.ExtraIngredientID}
			}
			if err != nil {
				return fmt.Errorf("load ingredient: %w", err)
			}
			extra = &ing
		}

		order := Order{
			DrinkID:           drink.ID,
			ExtraIngredientID: in.ExtraIngredientID,
			SugarAmount:       in.SugarAmount,
			PaymentStatus:     PaymentPaid,
		}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		recipe, err := tx.Recipe(ctx, drink.ID)
		if err != nil {
			return fmt.Errorf("load recipe: %w", err)
		}
		demands, err := p.demands(drink.ID, recipe, extra, in.SugarAmount)
		if err != nil {
			return err
		}
		consumed, warnings, err := p.consume(ctx, tx, demands)
		if err != nil {
			return err
		}

		details, err := tx.OrderDetails(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("reload order %d: %w", order.ID, err)
		}
		out = Placement{Order: details, Consumed: consumed, Warnings: warnings}
		return nil
	})
	if err != nil {
		p.Log.Warn().Err(err).Int64("drink_id", in.DrinkID).Int("sugar", in.SugarAmount).Msg("order rejected")
		return Placement{}, err
	}

	for _, w := range out.Warnings {
		p.Log.Warn().
			Int64("order_id", out.Order.OrderID).
			Int64("ingredient_id", w.IngredientID).
			Float64("required", w.Required).
			Strs("uses", w.Uses).
			Msg("no inventory record, stock not decremented")
	}
	p.Log.Info().Int64("order_id", out.Order.OrderID).Int64("drink_id", out.Order.DrinkID).
		Int("ingredients", len(out.Consumed)).Msg("order placed")
	return out, nil
}

type demand struct {
	ingredientID int64
	amount       float64
	uses         []string
}

// demands menggabungkan kebutuhan per ingredient lalu mengurutkan by id,
// supaya urutan lock antar transaksi selalu sama (hindari deadlock).
func (p *Placer) demands(drinkID int64, recipe []RecipeLine, extra *Ingredient, sugar int) ([]demand, error) {
	byID := map[int64]*demand{}
	add := func(id int64, amount float64, use string) {
		if amount == 0 {
			return
		}
		d, ok := byID[id]
		if !ok {
			d = &demand{ingredientID: id}
			byID[id] = d
		}
		d.amount = roundQty(d.amount + amount)
		d.uses = append(d.uses, use)
	}

	for _, l := range recipe {
		if l.Amount < 0 {
			return nil, fmt.Errorf("recipe of drink %d has negative amount for ingredient %d", drinkID, l.IngredientID)
		}
		add(l.IngredientID, l.Amount, UseRecipe)
	}
	if extra != nil {
		add(extra.ID, extra.Portion, UseExtra)
	}
	if sugar > 0 {
		add(p.sugarID(), float64(sugar)*p.gramsPerUnit(), UseSugar)
	}

	out := make([]demand, 0, len(byID))
	for _, d := range byID {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ingredientID < out[j].ingredientID })
	return out, nil
}

func (p *Placer) consume(ctx context.Context, tx Tx, demands []demand) ([]Consumption, []*StockError, error) {
	var (
		consumed []Consumption
		warnings []*StockError
	)
	for _, d := range demands {
		qty, err := tx.LockStock(ctx, d.ingredientID)
		if errors.Is(err, ErrNotFound) {
			se := &StockError{IngredientID: d.ingredientID, Required: d.amount, Missing: true, Uses: d.uses}
			if p.MissingStock == MissingStockReject {
				return nil, nil, se
			}
			warnings = append(warnings, se)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("lock stock %d: %w", d.ingredientID, err)
		}
		if roundQty(qty) < d.amount {
			return nil, nil, &StockError{IngredientID: d.ingredientID, Required: d.amount, Available: qty, Uses: d.uses}
		}

		left, err := tx.ConsumeStock(ctx, d.ingredientID, d.amount)
		if err != nil {
			return nil, nil, fmt.Errorf("consume stock %d: %w", d.ingredientID, err)
		}
		consumed = append(consumed, Consumption{IngredientID: d.ingredientID, Amount: d.amount, Remaining: left, Uses: d.uses})
	}
	return consumed, warnings, nil
}

func (p *Placer) sugarID() int64 {
	if p.SugarIngredientID > 0 {
		return p.SugarIngredientID
	}
	return DefaultSugarIngredientID
}

func (p *Placer) gramsPerUnit() float64 {
	if p.SugarGramsPerUnit > 0 {
		return p.SugarGramsPerUnit
	}
	return DefaultSugarGramsPerUnit
}

// numeric(10,2) di DB -> 2 digit desimal.
func roundQty(v float64) float64 {
	return math.Round(v*100) / 100
}
