package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polkiloo/veo3store/internal/domain/repository"
)

const uniqueViolation = "23505"

type pgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type packageRepository struct {
	storage *Storage
}

type licenseRepository struct {
	storage *Storage
}

var _ repository.Factory = (*Storage)(nil)

// New connects to the database, creates the schema and seeds the catalog.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if err := storage.seedPackages(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Packages() repository.PackageRepository {
	return &packageRepository{storage: s}
}

func (s *Storage) Licenses() repository.LicenseRepository {
	return &licenseRepository{storage: s}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            name TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT '',
            avatar TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL DEFAULT 'USER',
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE TABLE IF NOT EXISTS packages (
            id TEXT PRIMARY KEY,
            slug TEXT UNIQUE NOT NULL,
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            duration_months INT NOT NULL,
            original_price BIGINT NOT NULL,
            sale_price BIGINT NOT NULL,
            discount_percent INT NOT NULL DEFAULT 0,
            features TEXT[] NOT NULL DEFAULT '{}',
            popular BOOLEAN NOT NULL DEFAULT FALSE,
            max_devices INT NOT NULL DEFAULT 1,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            sort_order INT NOT NULL DEFAULT 0
        )`,
	`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            order_number TEXT UNIQUE NOT NULL,
            user_id BIGINT NOT NULL REFERENCES users(id),
            package_id TEXT NOT NULL REFERENCES packages(id),
            package_name TEXT NOT NULL,
            duration_months INT NOT NULL,
            amount BIGINT NOT NULL,
            currency TEXT NOT NULL DEFAULT 'VND',
            payment_method TEXT NOT NULL,
            transfer_content TEXT UNIQUE NOT NULL,
            status TEXT NOT NULL,
            user_confirmed_at TIMESTAMPTZ,
            approved_at TIMESTAMPTZ,
            rejected_at TIMESTAMPTZ,
            rejection_reason TEXT NOT NULL DEFAULT '',
            license_id TEXT NOT NULL DEFAULT '',
            license_key TEXT NOT NULL DEFAULT '',
            license_ends_at TIMESTAMPTZ,
            max_devices INT NOT NULL DEFAULT 0,
            delivery_method TEXT NOT NULL DEFAULT '',
            delivery_contact TEXT NOT NULL DEFAULT '',
            delivered_at TIMESTAMPTZ,
            admin_notes TEXT NOT NULL DEFAULT '',
            expires_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE TABLE IF NOT EXISTS licenses (
            id TEXT PRIMARY KEY,
            order_id TEXT UNIQUE NOT NULL REFERENCES orders(id),
            user_id BIGINT NOT NULL REFERENCES users(id),
            license_key TEXT NOT NULL,
            max_devices INT NOT NULL,
            starts_at TIMESTAMPTZ NOT NULL,
            ends_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status_expiry ON orders(status, expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_licenses_ends ON licenses(ends_at)`,
}

func (s *Storage) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Storage) seedPackages(ctx context.Context) error {
	const query = `INSERT INTO packages (id, slug, name, description, duration_months, original_price, sale_price,
                   discount_percent, features, popular, max_devices, is_active, sort_order)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
                   ON CONFLICT (id) DO NOTHING`
	for _, p := range Catalog() {
		if _, err := s.pool.Exec(ctx, query, p.ID, p.Slug, p.Name, p.Description, p.DurationMonths, p.OriginalPrice,
			p.SalePrice, p.DiscountPercent, p.Features, p.Popular, p.MaxDevices, p.Active, p.SortOrder); err != nil {
			return fmt.Errorf("seed package %s: %w", p.ID, err)
		}
	}
	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
