package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the POS state in an embedded database file.
// It is the default backend for a single-terminal deployment.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
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

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadState(ctx context.Context) (*State, error) {
	return loadState(ctx, r.db)
}

func (r *SQLiteRepository) SaveState(ctx context.Context, state *State) error {
	return saveState(ctx, r.db, state)
}

func (r *SQLiteRepository) InsertInvoice(ctx context.Context, invoice *domain.Invoice) error {
	err := insertInvoice(ctx, r.db, invoice)
	if err != nil {
		// modernc reports constraint violations as plain errors; the id is
		// the only constrained column, so a constraint failure with the row
		// present means the same invoice id
		if strings.Contains(err.Error(), "constraint") {
			var alreadyExists bool
			row := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM invoices WHERE id = $1)`, invoice.InvoiceID)
			if scanErr := row.Scan(&alreadyExists); scanErr == nil && alreadyExists {
				return ErrDuplicateInvoice
			}
		}
		return err
	}
	return nil
}

func (r *SQLiteRepository) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	return getInvoice(ctx, r.db, id)
}

func (r *SQLiteRepository) LastInvoiceSequence(ctx context.Context) (uint64, error) {
	return lastInvoiceSequence(ctx, r.db)
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Shared SQL between the SQLite and Postgres backends. SQLite accepts the
// same $N placeholders as Postgres, so the statements are portable.

func loadState(ctx context.Context, db *sql.DB) (*State, error) {
	state := &State{}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, quantity, unit_price, description, image_ref, created_at, updated_at
		FROM stock_items
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.StockItem
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Quantity,
			&item.UnitPrice,
			&item.Description,
			&item.ImageRef,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock item: %w", err)
		}
		state.Inventory = append(state.Inventory, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	lineRows, err := db.QueryContext(ctx, `
		SELECT item_id, quantity, name, unit_price, added_at
		FROM cart_lines
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var line domain.CartLine
		err := lineRows.Scan(
			&line.ItemID,
			&line.Quantity,
			&line.Name,
			&line.UnitPrice,
			&line.AddedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		state.Cart = append(state.Cart, line)
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return state, nil
}

func saveState(ctx context.Context, db *sql.DB, state *State) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stock_items`); err != nil {
		return fmt.Errorf("failed to clear stock items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines`); err != nil {
		return fmt.Errorf("failed to clear cart lines: %w", err)
	}

	for i, item := range state.Inventory {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO stock_items (id, position, name, quantity, unit_price, description, image_ref, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID, i, item.Name, item.Quantity, item.UnitPrice, item.Description, item.ImageRef, item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert stock item: %w", err)
		}
	}

	for i, line := range state.Cart {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_lines (item_id, position, quantity, name, unit_price, added_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			line.ItemID, i, line.Quantity, line.Name, line.UnitPrice, line.AddedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cart line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}

func insertInvoice(ctx context.Context, db *sql.DB, invoice *domain.Invoice) error {
	linesJSON, err := json.Marshal(invoice.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice lines: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO invoices (id, issued_at, subtotal, discount_percent, discount_amount, grand_total, lines)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		invoice.InvoiceID,
		invoice.IssuedAt,
		invoice.Subtotal,
		invoice.DiscountPercent,
		invoice.DiscountAmount,
		invoice.GrandTotal,
		linesJSON,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func getInvoice(ctx context.Context, db *sql.DB, id string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	var linesJSON []byte

	err := db.QueryRowContext(ctx, `
		SELECT id, issued_at, subtotal, discount_percent, discount_amount, grand_total, lines
		FROM invoices WHERE id = $1`, id).Scan(
		&invoice.InvoiceID,
		&invoice.IssuedAt,
		&invoice.Subtotal,
		&invoice.DiscountPercent,
		&invoice.DiscountAmount,
		&invoice.GrandTotal,
		&linesJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query invoice by id: %w", err)
	}

	if err := json.Unmarshal(linesJSON, &invoice.Lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invoice lines: %w", err)
	}
	return &invoice, nil
}

func lastInvoiceSequence(ctx context.Context, db *sql.DB) (uint64, error) {
	var count uint64
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return count, nil
}
