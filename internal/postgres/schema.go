package postgres

import (
	"context"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var createTables = []string{
	`CREATE TABLE IF NOT EXISTS drink (
		id_drink   SERIAL PRIMARY KEY,
		name_drink VARCHAR(100) NOT NULL,
		price      NUMERIC(7,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ingredient (
		id_ingredient   SERIAL PRIMARY KEY,
		name_ingredient VARCHAR(100) NOT NULL,
		unit            VARCHAR(10) NOT NULL,
		portion         NUMERIC(7,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS drink_ingredient (
		id_drink      INTEGER NOT NULL REFERENCES drink(id_drink) ON DELETE CASCADE,
		id_ingredient INTEGER NOT NULL REFERENCES ingredient(id_ingredient),
		amount        NUMERIC(7,2) NOT NULL CHECK (amount >= 0),
		PRIMARY KEY (id_drink, id_ingredient)
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id_ingredient INTEGER PRIMARY KEY REFERENCES ingredient(id_ingredient) ON DELETE CASCADE,
		quantity      NUMERIC(10,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id_order       SERIAL PRIMARY KEY,
		id_drink       INTEGER NOT NULL REFERENCES drink(id_drink),
		id_ingredient  INTEGER REFERENCES ingredient(id_ingredient),
		sugar_amount   INTEGER NOT NULL CHECK (sugar_amount BETWEEN 0 AND 5),
		payment_status VARCHAR(10) NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_id_drink ON orders(id_drink)`,
}

// urutan drop kebalikan dari create (foreign key)
const dropTables = `DROP TABLE IF EXISTS orders, inventory, drink_ingredient, ingredient, drink CASCADE`

type Schema struct{ DB *pgxpool.Pool }

func (s *Schema) Migrate(ctx context.Context) error {
	for _, q := range createTables {
		if _, err := s.DB.Exec(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Reset menghapus semua tabel lalu membuat ulang. Destruktif, hanya untuk test/bootstrap.
func (s *Schema) Reset(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, dropTables); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	for _, q := range createTables {
		if _, err := tx.Exec(ctx, q); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// Seed mengisi katalog demo. Sugar sengaja id 6 (default SUGAR_INGREDIENT_ID).
func (s *Schema) Seed(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, q := range seedStatements {
		batch.Queue(q)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return tx.Commit(ctx)
}

var seedStatements = []string{
	`INSERT INTO drink(id_drink, name_drink, price) VALUES
		(1, 'Espresso', 2.00), (2, 'Americano', 2.50), (3, 'Cappuccino', 3.20), (4, 'Latte', 3.50)
	 ON CONFLICT DO NOTHING`,
	`INSERT INTO ingredient(id_ingredient, name_ingredient, unit, portion) VALUES
		(1, 'Coffee beans', 'g', 9), (2, 'Water', 'ml', 50), (3, 'Milk', 'ml', 30),
		(4, 'Milk foam', 'ml', 20), (5, 'Vanilla syrup', 'ml', 15), (6, 'Sugar', 'g', 5)
	 ON CONFLICT DO NOTHING`,
	`INSERT INTO drink_ingredient(id_drink, id_ingredient, amount) VALUES
		(1, 1, 18), (1, 2, 30),
		(2, 1, 18), (2, 2, 150),
		(3, 1, 18), (3, 3, 60), (3, 4, 60),
		(4, 1, 18), (4, 3, 180), (4, 4, 20)
	 ON CONFLICT DO NOTHING`,
	`INSERT INTO inventory(id_ingredient, quantity) VALUES
		(1, 5000), (2, 20000), (3, 10000), (4, 5000), (5, 1000), (6, 2000)
	 ON CONFLICT DO NOTHING`,
	// serial harus lanjut setelah id eksplisit di atas
	`SELECT setval(pg_get_serial_sequence('drink', 'id_drink'), (SELECT MAX(id_drink) FROM drink))`,
	`SELECT setval(pg_get_serial_sequence('ingredient', 'id_ingredient'), (SELECT MAX(id_ingredient) FROM ingredient))`,
}
