package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_shop/internal/cart/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

// SQLiteAdapter persists cart snapshots as JSON rows in a single-file
// database. It is the default adapter for single-node deployments.
type SQLiteAdapter struct {
	db *sql.DB
}

func NewSQLiteAdapter(dbPath string) (*SQLiteAdapter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteAdapter{db: db}, nil
}

func (a *SQLiteAdapter) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(a.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (a *SQLiteAdapter) Load(ctx context.Context, ownerID string) (*domain.Cart, error) {
	query := `SELECT snapshot FROM carts WHERE owner_id = $1`

	var snapshot []byte
	err := a.db.QueryRowContext(ctx, query, ownerID).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(snapshot, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart snapshot: %w", err)
	}
	return &cart, nil
}

func (a *SQLiteAdapter) Save(ctx context.Context, cart *domain.Cart) error {
	snapshot, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}

	query := `
		INSERT INTO carts (owner_id, snapshot, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id) DO UPDATE SET snapshot = $2, updated_at = $3
	`
	_, err = a.db.ExecContext(ctx, query, cart.OwnerID, snapshot, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (a *SQLiteAdapter) Delete(ctx context.Context, ownerID string) error {
	result, err := a.db.ExecContext(ctx, `DELETE FROM carts WHERE owner_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (a *SQLiteAdapter) Close() error {
	return a.db.Close()
}
