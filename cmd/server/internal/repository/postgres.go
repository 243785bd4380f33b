package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/umairaslam2/Kits-Backend/pkg/models"
)

var _ OrderStore = (*PostgresStore)(nil)

const purchaseSchema = `
CREATE TABLE IF NOT EXISTS purchase (
	id                 BIGINT PRIMARY KEY,
	symbol             TEXT NOT NULL,
	volume             BIGINT NOT NULL,
	rate               DOUBLE PRECISION NOT NULL,
	purchase_type      TEXT NOT NULL,
	account            BIGINT NOT NULL,
	purchase_timestamp TIMESTAMPTZ NOT NULL,
	purchase_date      TEXT NOT NULL,
	counter            TEXT NOT NULL DEFAULT '',
	b_rate             DOUBLE PRECISION NOT NULL DEFAULT 0,
	s_rate             DOUBLE PRECISION NOT NULL DEFAULT 0,
	ticket             TEXT NOT NULL DEFAULT '',
	purchase_action    TEXT NOT NULL DEFAULT '',
	total_vol          BIGINT NOT NULL DEFAULT 0,
	total_val          DOUBLE PRECISION NOT NULL DEFAULT 0,
	trader             TEXT NOT NULL DEFAULT '',
	inst               TEXT NOT NULL DEFAULT '',
	remaining          TEXT NOT NULL DEFAULT '',
	flag               TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS purchase_account_idx ON purchase (account);
CREATE INDEX IF NOT EXISTS purchase_account_symbol_idx ON purchase (account, symbol);
`

const orderColumns = `id, symbol, volume, rate, purchase_type, account, purchase_timestamp,
purchase_date, counter, b_rate, s_rate, ticket, purchase_action,
total_vol, total_val, trader, inst, remaining, flag`

// PostgresStore is the durable order store backed by a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and ensures the purchase table exists.
// Call Close when finished.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, purchaseSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Save(ctx context.Context, o *models.Order) error {
	if o == nil {
		return errors.New("nil order")
	}
	_, err := p.pool.Exec(ctx, `
INSERT INTO purchase(`+orderColumns+`)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
`, o.ID, o.Symbol, o.Volume, o.Rate, o.Type, o.Account, o.Timestamp,
		o.Date, o.Counter, o.BRate, o.SRate, o.Ticket, o.Action,
		o.TotalVol, o.TotalVal, o.Trader, o.Inst, o.Remaining, o.Flag)
	return err
}

func (p *PostgresStore) ByAccount(ctx context.Context, account int64) ([]models.Order, error) {
	rows, err := p.pool.Query(ctx, `
SELECT `+orderColumns+`
FROM purchase
WHERE account = $1
ORDER BY id ASC
`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Order, 0)
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Last(ctx context.Context, account int64, symbol string) (*models.Order, error) {
	row := p.pool.QueryRow(ctx, `
SELECT `+orderColumns+`
FROM purchase
WHERE account = $1 AND symbol = $2
ORDER BY purchase_timestamp DESC
LIMIT 1
`, account, symbol)

	var o models.Order
	err := scanOrder(row, &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (p *PostgresStore) MaxID(ctx context.Context) (int64, error) {
	var maxID int64
	err := p.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM purchase`).Scan(&maxID)
	return maxID, err
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func scanOrder(row pgx.Row, o *models.Order) error {
	return row.Scan(&o.ID, &o.Symbol, &o.Volume, &o.Rate, &o.Type, &o.Account,
		&o.Timestamp, &o.Date, &o.Counter, &o.BRate, &o.SRate, &o.Ticket,
		&o.Action, &o.TotalVol, &o.TotalVal, &o.Trader, &o.Inst,
		&o.Remaining, &o.Flag)
}
