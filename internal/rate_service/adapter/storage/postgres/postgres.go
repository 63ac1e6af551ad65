package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
)

// Storage is the append-only rate history on PostgreSQL. Every write is an
// independent insert; concurrent refresh cycles may append duplicate rows,
// which is harmless for a log.
type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{
		db: pool,
	}
}

func InitStorage(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgres.InitStorage"

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 10 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, op)
	}

	return NewStorage(pool), nil
}

func (s *Storage) Close() {
	s.db.Close()
}

func (s *Storage) InsertRate(ctx context.Context, rate *entities.ReconciledRate) error {
	const op = "storage.postgres.InsertRate"

	_, err := s.db.Exec(ctx, `
		INSERT INTO exchange_rates (base_code, target_code, rate, provider, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rate.Base.String(), rate.Target.String(), rate.Rate.String(), rate.Provider, rate.Timestamp)
	if err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) LatestRate(ctx context.Context, base, target entities.CurrencyCode) (*entities.ReconciledRate, error) {
	const op = "storage.postgres.LatestRate"

	row := s.db.QueryRow(ctx, `
		SELECT rate::text, provider, created_at
		FROM exchange_rates
		WHERE base_code = $1 AND target_code = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, base.String(), target.String())

	var (
		rateStr   string
		provider  string
		createdAt time.Time
	)
	if err := row.Scan(&rateStr, &provider, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entities.ErrRateNotFound
		}
		return nil, errors.Wrap(err, op)
	}

	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return &entities.ReconciledRate{
		Base:      base,
		Target:    target,
		Rate:      rate,
		Timestamp: createdAt,
		Provider:  provider,
	}, nil
}

func (s *Storage) LatestRates(ctx context.Context, base entities.CurrencyCode) ([]entities.ReconciledRate, error) {
	const op = "storage.postgres.LatestRates"

	rows, err := s.db.Query(ctx, `
		WITH RankedRates AS (
			SELECT target_code, rate::text AS rate, provider, created_at,
				ROW_NUMBER() OVER (PARTITION BY target_code ORDER BY created_at DESC) AS rn
			FROM exchange_rates
			WHERE base_code = $1
		)
		SELECT target_code, rate, provider, created_at
		FROM RankedRates
		WHERE rn = 1
		ORDER BY target_code
	`, base.String())
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer rows.Close()

	var rates []entities.ReconciledRate

	for rows.Next() {
		var (
			targetStr string
			rateStr   string
			provider  string
			createdAt time.Time
		)
		if err := rows.Scan(&targetStr, &rateStr, &provider, &createdAt); err != nil {
			return nil, errors.Wrap(err, op)
		}

		rate, err := decimal.NewFromString(rateStr)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}

		rates = append(rates, entities.ReconciledRate{
			Base:      base,
			Target:    entities.CurrencyCode(targetStr),
			Rate:      rate,
			Timestamp: createdAt,
			Provider:  provider,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return rates, nil
}

func (s *Storage) RatesInWindow(ctx context.Context, base, target entities.CurrencyCode, from, to time.Time) ([]entities.ReconciledRate, error) {
	const op = "storage.postgres.RatesInWindow"

	rows, err := s.db.Query(ctx, `
		SELECT rate::text, provider, created_at
		FROM exchange_rates
		WHERE base_code = $1 AND target_code = $2 AND created_at BETWEEN $3 AND $4
		ORDER BY created_at ASC
	`, base.String(), target.String(), from, to)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer rows.Close()

	var rates []entities.ReconciledRate

	for rows.Next() {
		var (
			rateStr   string
			provider  string
			createdAt time.Time
		)
		if err := rows.Scan(&rateStr, &provider, &createdAt); err != nil {
			return nil, errors.Wrap(err, op)
		}

		rate, err := decimal.NewFromString(rateStr)
		if err != nil {
			return nil, errors.Wrap(err, op)
		}

		rates = append(rates, entities.ReconciledRate{
			Base:      base,
			Target:    target,
			Rate:      rate,
			Timestamp: createdAt,
			Provider:  provider,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return rates, nil
}
