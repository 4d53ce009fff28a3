package repository

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/fjod/go_pos/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a running Postgres; set POSTGRES_HOST to enable.
func setupPostgres(t *testing.T) *PostgresRepository {
	t.Helper()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		t.Skip("POSTGRES_HOST not set, skipping Postgres tests")
	}

	port := 5432
	if p, err := strconv.Atoi(os.Getenv("POSTGRES_PORT")); err == nil {
		port = p
	}

	cred := &Credentials{
		Host:              host,
		Port:              port,
		User:              envOr("POSTGRES_USER", "postgres"),
		Password:          envOr("POSTGRES_PASSWORD", "postgres"),
		DBName:            envOr("POSTGRES_DB", "pos_test"),
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewPostgresRepository(cred)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.RunMigrations(cred))
	return repo
}

func envOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func TestPostgres_StateRoundTrip(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveState(ctx, sampleState()))

	state, err := repo.LoadState(ctx)
	require.NoError(t, err)
	require.Len(t, state.Inventory, 2)
	assert.Equal(t, "Pen", state.Inventory[0].Name)
	require.Len(t, state.Cart, 1)
}

func TestPostgres_DuplicateInvoice(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	invoice := &domain.Invoice{
		InvoiceID: "INV-pg-dup-" + strconv.FormatInt(time.Now().UnixNano(), 10),
		IssuedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.InsertInvoice(ctx, invoice))

	err := repo.InsertInvoice(ctx, invoice)
	assert.ErrorIs(t, err, ErrDuplicateInvoice)
}
