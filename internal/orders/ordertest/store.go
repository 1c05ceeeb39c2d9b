// Package ordertest menyediakan Store + Catalog in-memory untuk unit test.
// Satu transaksi memegang mutex sampai selesai, jadi transaksi selalu serial
// (setara row lock yang lebih kasar); error dari fn membuang semua perubahan.
package ordertest

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-coffee-orders/internal/orders"
	"sort"
	"sync"
	"time"
)

type Store struct {
	mu  sync.Mutex
	st  state
	Now func() time.Time
}

var (
	_ orders.Store   = (*Store)(nil)
	_ orders.Catalog = (*Store)(nil)
)

type state struct {
	drinks      map[int64]orders.Drink
	ingredients map[int64]orders.Ingredient
	recipes     []orders.RecipeLine
	stock       map[int64]float64
	orders      []orders.Order
	nextOrderID int64
}

func (s state) clone() state {
	c := state{
		drinks:      make(map[int64]orders.Drink, len(s.drinks)),
		ingredients: make(map[int64]orders.Ingredient, len(s.ingredients)),
		recipes:     append([]orders.RecipeLine(nil), s.recipes...),
		stock:       make(map[int64]float64, len(s.stock)),
		orders:      append([]orders.Order(nil), s.orders...),
		nextOrderID: s.nextOrderID,
	}
	for k, v := range s.drinks {
		c.drinks[k] = v
	}
	for k, v := range s.ingredients {
		c.ingredients[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	return c
}

func New() *Store {
	return &Store{
		st: state{
			drinks:      map[int64]orders.Drink{},
			ingredients: map[int64]orders.Ingredient{},
			stock:       map[int64]float64{},
			nextOrderID: 1,
		},
		Now: time.Now,
	}
}

// ---- seeding helpers ----

func (s *Store) AddDrink(d orders.Drink) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.drinks[d.ID] = d
	return s
}

func (s *Store) AddIngredient(i orders.Ingredient) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.ingredients[i.ID] = i
	return s
}

func (s *Store) AddRecipe(drinkID, ingredientID int64, amount float64) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.recipes = append(s.st.recipes, orders.RecipeLine{DrinkID: drinkID, IngredientID: ingredientID, Amount: amount})
	return s
}

func (s *Store) SetStock(ingredientID int64, qty float64) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.stock[ingredientID] = qty
	return s
}

func (s *Store) Stock(ingredientID int64) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.st.stock[ingredientID]
	return q, ok
}

func (s *Store) Orders() []orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]orders.Order(nil), s.st.orders...)
}

// ---- orders.Store ----

func (s *Store) InTx(ctx context.Context, fn func(tx orders.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(&tx{st: &work, now: s.Now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) Drink(_ context.Context, id int64) (orders.Drink, error) {
	d, ok := t.st.drinks[id]
	if !ok {
		return orders.Drink{}, orders.ErrNotFound
	}
	return d, nil
}

func (t *tx) Ingredient(_ context.Context, id int64) (orders.Ingredient, error) {
	i, ok := t.st.ingredients[id]
	if !ok {
		return orders.Ingredient{}, orders.ErrNotFound
	}
	return i, nil
}

func (t *tx) InsertOrder(_ context.Context, o *orders.Order) error {
	if !o.PaymentStatus.Valid() {
		return fmt.Errorf("unknown payment_status %q", o.PaymentStatus)
	}
	if _, ok := t.st.drinks[o.DrinkID]; !ok {
		return fmt.Errorf("foreign key: drink %d", o.DrinkID)
	}
	o.ID = t.st.nextOrderID
	o.CreatedAt = t.now().UTC()
	t.st.nextOrderID++
	t.st.orders = append(t.st.orders, *o)
	return nil
}

func (t *tx) Recipe(_ context.Context, drinkID int64) ([]orders.RecipeLine, error) {
	var out []orders.RecipeLine
	for _, l := range t.st.recipes {
		if l.DrinkID == drinkID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (t *tx) LockStock(_ context.Context, ingredientID int64) (float64, error) {
	q, ok := t.st.stock[ingredientID]
	if !ok {
		return 0, orders.ErrNotFound
	}
	return q, nil
}

func (t *tx) ConsumeStock(_ context.Context, ingredientID int64, amount float64) (float64, error) {
	q, ok := t.st.stock[ingredientID]
	if !ok || q < amount {
		return 0, fmt.Errorf("ingredient %d: %w", ingredientID, orders.ErrInsufficientStock)
	}
	t.st.stock[ingredientID] = q - amount
	return q - amount, nil
}

func (t *tx) OrderDetails(_ context.Context, orderID int64) (orders.OrderDetails, error) {
	return t.st.details(orderID)
}

func (s state) details(orderID int64) (orders.OrderDetails, error) {
	for _, o := range s.orders {
		if o.ID == orderID {
			return s.join(o), nil
		}
	}
	return orders.OrderDetails{}, fmt.Errorf("order %d: %w", orderID, orders.ErrNotFound)
}

func (s state) join(o orders.Order) orders.OrderDetails {
	od := orders.OrderDetails{
		DrinkID:       o.DrinkID,
		OrderID:       o.ID,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
		Drink:         s.drinks[o.DrinkID],
	}
	if o.ExtraIngredientID != nil {
		if ing, ok := s.ingredients[*o.ExtraIngredientID]; ok {
			od.Ingredient = &ing
		}
	}
	return od
}

// ---- orders.Catalog ----

func (s *Store) ListDrinks(context.Context) ([]orders.Drink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []orders.Drink{}
	for _, id := range sortedKeys(s.st.drinks) {
		out = append(out, s.st.drinks[id])
	}
	return out, nil
}

func (s *Store) ListIngredients(context.Context) ([]orders.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []orders.Ingredient{}
	for _, id := range sortedKeys(s.st.ingredients) {
		out = append(out, s.st.ingredients[id])
	}
	return out, nil
}

func (s *Store) ListOrders(context.Context) ([]orders.OrderDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []orders.OrderDetails{}
	for _, o := range s.st.orders {
		out = append(out, s.st.join(o))
	}
	return out, nil
}

func (s *Store) ListRecipes(context.Context) ([]orders.RecipeDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := append([]orders.RecipeLine(nil), s.st.recipes...)
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].DrinkID != lines[j].DrinkID {
			return lines[i].DrinkID < lines[j].DrinkID
		}
		return lines[i].IngredientID < lines[j].IngredientID
	})
	out := []orders.RecipeDetails{}
	for _, l := range lines {
		out = append(out, orders.RecipeDetails{
			IngredientID: l.IngredientID,
			DrinkID:      l.DrinkID,
			Amount:       l.Amount,
			Drink:        s.st.drinks[l.DrinkID],
			Ingredient:   s.st.ingredients[l.IngredientID],
		})
	}
	return out, nil
}

func (s *Store) ListInventory(context.Context) ([]orders.InventoryDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []orders.InventoryDetails{}
	for _, id := range sortedKeys(s.st.stock) {
		out = append(out, orders.InventoryDetails{
			IngredientID: id,
			Quantity:     s.st.stock[id],
			Ingredient:   s.st.ingredients[id],
		})
	}
	return out, nil
}

func (s *Store) OrderByID(_ context.Context, id int64) (orders.OrderDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.details(id)
}

func (s *Store) StockLevels(_ context.Context, ids []int64) ([]orders.StockLevel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []orders.StockLevel
	for _, id := range ids {
		if q, ok := s.st.stock[id]; ok {
			out = append(out, orders.StockLevel{IngredientID: id, Quantity: q})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngredientID < out[j].IngredientID })
	return out, nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
