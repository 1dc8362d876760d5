package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientStock is returned by DecrementStock when the conditional
// update matches no row.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrNotFound is returned by writes that matched no row. Point reads return
// (nil, nil) instead.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateOrderNumber is returned when an insert loses the race on the
// order number's unique constraint.
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so
// repository methods run against whichever the context carries.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// TxManager runs fn inside a single storage transaction. Every repository
// call made with the context passed to fn joins that transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type pgTxManager struct{ pool *pgxpool.Pool }

func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgTxManager{pool: pool}
}

func (m *pgTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func queryFrom(ctx context.Context, pool *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

type ProductFilter struct {
	Category    string
	ProductType string
	Featured    *bool
	InStock     *bool
	Search      string
	SortBy      string
	SortOrder   string
	Limit       int
	Offset      int
}

type OrderFilter struct {
	Status        string
	PaymentStatus string
	Search        string
	DateFrom      *time.Time
	DateTo        *time.Time
	SortBy        string
	SortOrder     string
	Limit         int
	Offset        int
}

type ContactFilter struct {
	Status      string
	InquiryType string
	Limit       int
	Offset      int
}
