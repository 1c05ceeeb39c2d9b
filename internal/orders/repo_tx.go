package orders

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
)

type pgTx struct{ q querier }

func (t *pgTx) Drink(ctx context.Context, id int64) (Drink, error) {
	var d Drink
	err := t.q.QueryRow(ctx, `SELECT id_drink, name_drink, price FROM drink WHERE id_drink=$1`, id).
		Scan(&d.ID, &d.Name, &d.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return Drink{}, ErrNotFound
	}
	return d, err
}

func (t *pgTx) Ingredient(ctx context.Context, id int64) (Ingredient, error) {
	var i Ingredient
	err := t.q.QueryRow(ctx, `SELECT id_ingredient, name_ingredient, unit, portion
	                          FROM ingredient WHERE id_ingredient=$1`, id).
		Scan(&i.ID, &i.Name, &i.Unit, &i.Portion)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ingredient{}, ErrNotFound
	}
	return i, err
}

func (t *pgTx) InsertOrder(ctx context.Context, o *Order) error {
	if !o.PaymentStatus.Valid() {
		return fmt.Errorf("insert order: unknown payment_status %q", o.PaymentStatus)
	}
	return t.q.QueryRow(ctx, `
		INSERT INTO orders(id_drink, id_ingredient, sugar_amount, payment_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id_order, created_at`,
		o.DrinkID, o.ExtraIngredientID, o.SugarAmount, string(o.PaymentStatus),
	).Scan(&o.ID, &o.CreatedAt)
}

func (t *pgTx) Recipe(ctx context.Context, drinkID int64) ([]RecipeLine, error) {
	rows, err := t.q.Query(ctx, `SELECT id_drink, id_ingredient, amount FROM drink_ingredient
	                             WHERE id_drink=$1 ORDER BY id_ingredient`, drinkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecipeLine
	for rows.Next() {
		var l RecipeLine
		if err := rows.Scan(&l.DrinkID, &l.IngredientID, &l.Amount); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LockStock: baris inventory dikunci sampai commit/rollback, order lain yang butuh ingredient sama akan menunggu.
func (t *pgTx) LockStock(ctx context.Context, ingredientID int64) (float64, error) {
	var qty float64
	err := t.q.QueryRow(ctx, `SELECT quantity FROM inventory WHERE id_ingredient=$1 FOR UPDATE`, ingredientID).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return qty, err
}

func (t *pgTx) ConsumeStock(ctx context.Context, ingredientID int64, amount float64) (float64, error) {
	var left float64
	err := t.q.QueryRow(ctx, `
		UPDATE inventory SET quantity = quantity - $2
		WHERE id_ingredient=$1 AND quantity >= $2
		RETURNING quantity`, ingredientID, amount).Scan(&left)
	if errors.Is(err, pgx.ErrNoRows) {
		// harusnya tidak terjadi setelah LockStock, tapi stok tidak boleh negatif
		return 0, fmt.Errorf("ingredient %d: %w", ingredientID, ErrInsufficientStock)
	}
	return left, err
}

func (t *pgTx) OrderDetails(ctx context.Context, orderID int64) (OrderDetails, error) {
	return orderDetails(ctx, t.q, orderID)
}
