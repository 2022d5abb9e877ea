package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/mvoronin/payment-system/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore предоставляет основное хранилище счетов в PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore создаёт хранилище и инициализирует схему БД через миграции.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}

	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет операцию при сериализационных и сетевых сбоях.
func (s *PostgresStore) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewConstant(1*time.Second))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				return retry.RetryableError(err)
			}
			return err
		}

		if isConnectionError(err) {
			return retry.RetryableError(err)
		}

		return err
	})
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// GetAccount возвращает счёт по номеру. Баланс передаётся текстом,
// чтобы исключить потерю точности при конвертации NUMERIC.
func (s *PostgresStore) GetAccount(ctx context.Context, number string) (*model.Account, error) {
	var acc *model.Account

	err := s.withRetry(ctx, func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx,
			`SELECT number, balance::text, status, allowed_schemes FROM accounts WHERE number = $1`,
			number,
		)

		var (
			num        string
			balanceStr string
			status     string
			schemes    string
		)
		if err := row.Scan(&num, &balanceStr, &status, &schemes); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("get account: %w", err)
		}

		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			return fmt.Errorf("parse balance: %w", err)
		}

		acc = &model.Account{
			Number:         num,
			Balance:        balance,
			Status:         model.AccountStatus(status),
			AllowedSchemes: model.ParseSchemeSet(schemes),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return acc, nil
}

// UpdateAccount сохраняет счёт целиком, перезаписывая прежнее состояние.
func (s *PostgresStore) UpdateAccount(ctx context.Context, account *model.Account) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO accounts (number, balance, status, allowed_schemes, updated_at)
			 VALUES ($1, $2::numeric, $3, $4, now())
			 ON CONFLICT (number) DO UPDATE SET
			     balance = EXCLUDED.balance,
			     status = EXCLUDED.status,
			     allowed_schemes = EXCLUDED.allowed_schemes,
			     updated_at = now()`,
			account.Number,
			account.Balance.String(),
			string(account.Status),
			account.AllowedSchemes.String(),
		)
		if err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		return nil
	})
}
