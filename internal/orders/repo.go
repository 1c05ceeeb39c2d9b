package orders

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo adalah implementasi Store + Catalog di atas PostgreSQL.
type Repo struct{ DB *pgxpool.Pool }

var (
	_ Store   = (*Repo)(nil)
	_ Catalog = (*Repo)(nil)
)

// querier dipenuhi oleh *pgxpool.Pool maupun pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repo) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgTx{q: tx}); err != nil {
		return err // rollback via defer
	}
	return tx.Commit(ctx)
}

const orderDetailsSelect = `
	SELECT o.id_order, o.id_drink, o.payment_status, o.created_at,
	       d.name_drink, d.price,
	       i.id_ingredient, i.name_ingredient, i.unit, i.portion
	FROM orders o
	JOIN drink d ON d.id_drink = o.id_drink
	LEFT JOIN ingredient i ON i.id_ingredient = o.id_ingredient`

func scanOrderDetails(row rowScanner) (OrderDetails, error) {
	var (
		od      OrderDetails
		status  string
		ingID   *int64
		ingName *string
		ingUnit *string
		ingPort *float64
	)
	if err := row.Scan(&od.OrderID, &od.DrinkID, &status, &od.CreatedAt,
		&od.Drink.Name, &od.Drink.Price,
		&ingID, &ingName, &ingUnit, &ingPort); err != nil {
		return OrderDetails{}, err
	}
	od.PaymentStatus = PaymentStatus(status)
	if !od.PaymentStatus.Valid() {
		return OrderDetails{}, fmt.Errorf("order %d: unknown payment_status %q", od.OrderID, status)
	}
	od.Drink.ID = od.DrinkID
	if ingID != nil {
		od.Ingredient = &Ingredient{ID: *ingID, Name: deref(ingName), Unit: deref(ingUnit), Portion: deref(ingPort)}
	}
	return od, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func orderDetails(ctx context.Context, q querier, id int64) (OrderDetails, error) {
	od, err := scanOrderDetails(q.QueryRow(ctx, orderDetailsSelect+` WHERE o.id_order=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return OrderDetails{}, fmt.Errorf("order %d: %w", id, ErrNotFound)
	}
	return od, err
}

func (r *Repo) OrderByID(ctx context.Context, id int64) (OrderDetails, error) {
	return orderDetails(ctx, r.DB, id)
}

func (r *Repo) ListOrders(ctx context.Context) ([]OrderDetails, error) {
	rows, err := r.DB.Query(ctx, orderDetailsSelect+` ORDER BY o.id_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []OrderDetails{}
	for rows.Next() {
		od, err := scanOrderDetails(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, od)
	}
	return out, rows.Err()
}

func (r *Repo) ListDrinks(ctx context.Context) ([]Drink, error) {
	rows, err := r.DB.Query(ctx, `SELECT id_drink, name_drink, price FROM drink ORDER BY id_drink`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Drink{}
	for rows.Next() {
		var d Drink
		if err := rows.Scan(&d.ID, &d.Name, &d.Price); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := r.DB.Query(ctx, `SELECT id_ingredient, name_ingredient, unit, portion
	                              FROM ingredient ORDER BY id_ingredient`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Ingredient{}
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.Unit, &i.Portion); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *Repo) ListRecipes(ctx context.Context) ([]RecipeDetails, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT di.id_drink, di.id_ingredient, di.amount,
		       d.name_drink, d.price,
		       i.name_ingredient, i.unit, i.portion
		FROM drink_ingredient di
		JOIN drink d ON d.id_drink = di.id_drink
		JOIN ingredient i ON i.id_ingredient = di.id_ingredient
		ORDER BY di.id_drink, di.id_ingredient`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RecipeDetails{}
	for rows.Next() {
		var rd RecipeDetails
		if err := rows.Scan(&rd.DrinkID, &rd.IngredientID, &rd.Amount,
			&rd.Drink.Name, &rd.Drink.Price,
			&rd.Ingredient.Name, &rd.Ingredient.Unit, &rd.Ingredient.Portion); err != nil {
			return nil, err
		}
		rd.Drink.ID = rd.DrinkID
		rd.Ingredient.ID = rd.IngredientID
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (r *Repo) ListInventory(ctx context.Context) ([]InventoryDetails, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT inv.id_ingredient, inv.quantity, i.name_ingredient, i.unit, i.portion
		FROM inventory inv
		JOIN ingredient i ON i.id_ingredient = inv.id_ingredient
		ORDER BY inv.id_ingredient`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []InventoryDetails{}
	for rows.Next() {
		var it InventoryDetails
		if err := rows.Scan(&it.IngredientID, &it.Quantity,
			&it.Ingredient.Name, &it.Ingredient.Unit, &it.Ingredient.Portion); err != nil {
			return nil, err
		}
		it.Ingredient.ID = it.IngredientID
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *Repo) StockLevels(ctx context.Context, ingredientIDs []int64) ([]StockLevel, error) {
	rows, err := r.DB.Query(ctx, `SELECT id_ingredient, quantity FROM inventory
	                              WHERE id_ingredient = ANY($1) ORDER BY id_ingredient`, ingredientIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockLevel
	for rows.Next() {
		var s StockLevel
		if err := rows.Scan(&s.IngredientID, &s.Quantity); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
