//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var tcPool *pgxpool.Pool

var tcDSN string

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start postgres testcontainer: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after conn string error: %v", termErr)
		}
		log.Fatalf("failed to get connection string from container: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after pool create error: %v", termErr)
		}
		log.Fatalf("failed to create pgx pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after ping error: %v", termErr)
		}
		log.Fatalf("failed to ping postgres in testcontainer: %v", err)
	}

	tcPool = pool
	tcDSN = connStr

	if err := createTables(ctx, tcPool); err != nil {
		pool.Close()
		if termErr := pgContainer.Terminate(ctx); termErr != nil {
			log.Printf("failed to terminate container after createTables error: %v", termErr)
		}
		log.Fatalf("failed to create test tables: %v", err)
	}

	code := m.Run()

	pool.Close()
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Printf("failed to terminate postgres container: %v", err)
	}

	os.Exit(code)
}

func createTables(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"vendors", `
			CREATE TABLE IF NOT EXISTS vendors (
				id   BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL,
				lat  DOUBLE PRECISION,
				lon  DOUBLE PRECISION
			);
		`},
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id    BIGSERIAL PRIMARY KEY,
				name  TEXT NOT NULL,
				phone TEXT NOT NULL
			);
		`},
		{"orders", `
			CREATE TABLE IF NOT EXISTS orders (
				id                    BIGSERIAL PRIMARY KEY,
				user_id               BIGINT NOT NULL REFERENCES users(id),
				vendor_id             BIGINT NOT NULL REFERENCES vendors(id),
				driver_id             BIGINT,
				status                TEXT NOT NULL,
				delivery_fee_amount   BIGINT NOT NULL DEFAULT 0,
				delivery_fee_currency TEXT NOT NULL DEFAULT 'NGN',
				otp_code              TEXT,
				delivery_lat          DOUBLE PRECISION,
				delivery_lon          DOUBLE PRECISION,
				assigned_at           TIMESTAMPTZ,
				picked_up_at          TIMESTAMPTZ,
				dispatched_at         TIMESTAMPTZ,
				delivered_at          TIMESTAMPTZ,
				created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`},
		{"order_items", `
			CREATE TABLE IF NOT EXISTS order_items (
				id                  BIGSERIAL PRIMARY KEY,
				order_id            BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
				name                TEXT NOT NULL,
				quantity            INT NOT NULL,
				unit_price_amount   BIGINT NOT NULL,
				unit_price_currency TEXT NOT NULL
			);
		`},
		{"order_events", `
			CREATE TABLE IF NOT EXISTS order_events (
				id          BIGSERIAL PRIMARY KEY,
				order_id    BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
				from_status TEXT NOT NULL,
				to_status   TEXT NOT NULL,
				actor_type  TEXT NOT NULL,
				actor_id    BIGINT,
				note        TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`},
		{"driver_earnings", `
			CREATE TABLE IF NOT EXISTS driver_earnings (
				id                BIGSERIAL PRIMARY KEY,
				driver_id         BIGINT NOT NULL,
				order_id          BIGINT NOT NULL UNIQUE,
				gross_amount      BIGINT NOT NULL,
				commission_amount BIGINT NOT NULL,
				net_amount        BIGINT NOT NULL,
				currency          TEXT NOT NULL,
				status            TEXT NOT NULL,
				created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`},
		{"delivery_radius", `
			CREATE TABLE IF NOT EXISTS delivery_radius (
				id         BIGSERIAL PRIMARY KEY,
				radius_km  DOUBLE PRECISION NOT NULL,
				active     BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
		`},
		{"settings", `
			CREATE TABLE IF NOT EXISTS settings (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);
		`},
		{"delivery_zones", `
			CREATE TABLE IF NOT EXISTS delivery_zones (
				id        BIGSERIAL PRIMARY KEY,
				name      TEXT NOT NULL,
				active    BOOLEAN NOT NULL DEFAULT true,
				radius_km DOUBLE PRECISION,
				polygon   JSONB NOT NULL DEFAULT '[]'
			);
		`},
	}

	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s.sql); err != nil {
			return fmt.Errorf("create %s table: %w", s.name, err)
		}
	}
	return nil
}

func resetTables(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, table := range []string{
		"order_events", "order_items", "driver_earnings", "orders",
		"vendors", "users", "delivery_radius", "settings", "delivery_zones",
	} {
		if _, err := tcPool.Exec(ctx, fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", table)); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
}
