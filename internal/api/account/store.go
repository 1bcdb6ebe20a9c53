package account

import (
	"context"
	"errors"
	"fmt"
	"math"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/JhonesBR/go-ledger/internal/api/account"
	tableName           = "account"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Mutation computes the new state of a locked account row.
// Returning an error aborts the transaction.
type Mutation func(Account) (Account, error)

type Store struct {
	pool      *pgxpool.Pool
	tracer    trace.Tracer
	mutations metric.Int64Counter
}

func NewStore(pool *pgxpool.Pool) *Store {
	mutations, err := otel.Meter(instrumentationName).Int64Counter(
		"ledger.balance.mutations",
		metric.WithDescription("Balance mutations by operation and outcome"),
	)
	if err != nil {
		otel.Handle(err)
		mutations = noop.Int64Counter{}
	}

	return &Store{
		pool:      pool,
		tracer:    otel.Tracer(instrumentationName),
		mutations: mutations,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Get(ctx context.Context, id int64) (acc Account, err error) {
	ctx, span := s.startSpan(ctx, "get", id)
	defer func() { endSpan(span, err) }()

	return getAccount(ctx, s.pool, id, false)
}

func (s *Store) Upsert(ctx context.Context, acc Account) (err error) {
	ctx, span := s.startSpan(ctx, "upsert", acc.Id)
	defer func() { endSpan(span, err) }()

	return upsertAccount(ctx, s.pool, acc)
}

// CreateIfAbsent inserts the account unless the id is already taken.
// It reports whether a row was written.
func (s *Store) CreateIfAbsent(ctx context.Context, id int64, name string, balance decimal.Decimal) (created bool, err error) {
	ctx, span := s.startSpan(ctx, "create_if_absent", id)
	defer func() { endSpan(span, err) }()

	if !InRange(id) {
		return false, fmt.Errorf("account id %d out of range", id)
	}
	if !fitsFloat(balance) {
		return false, fmt.Errorf("balance %s does not fit a FLOAT", balance)
	}

	query, args, err := psql.
		Insert(tableName).
		Columns("id", "name", "balance").
		Values(id, name, balance.InexactFloat64()).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build insert: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to create account %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) (accounts []Account, total int, err error) {
	ctx, span := s.tracer.Start(ctx, "account.store.list", trace.WithAttributes(
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	))
	defer func() { endSpan(span, err) }()

	countQuery, _, err := psql.Select("COUNT(*)").From(tableName).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count: %w", err)
	}
	if err := s.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	query, args, err := psql.
		Select("id", "name", "COALESCE(balance, 0)").
		From(tableName).
		OrderBy("id").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts = make([]Account, 0, limit)
	for rows.Next() {
		var acc Account
		var balance float64
		if err := rows.Scan(&acc.Id, &acc.Name, &balance); err != nil {
			return nil, 0, fmt.Errorf("failed to scan account: %w", err)
		}
		if math.IsInf(balance, 0) || math.IsNaN(balance) {
			return nil, 0, fmt.Errorf("account %d holds non-finite balance %v", acc.Id, balance)
		}
		acc.Balance = decimal.NewFromFloat(balance)
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, total, nil
}

// Mutate applies fn to the account inside a transaction holding a row lock
// on it, and commits the result. Nothing is written when fn fails.
func (s *Store) Mutate(ctx context.Context, id int64, operation string, fn Mutation) (acc Account, err error) {
	ctx, span := s.startSpan(ctx, "mutate", id)
	span.SetAttributes(attribute.String("operation", operation))
	defer func() {
		s.recordMutation(ctx, operation, err)
		endSpan(span, err)
	}()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Account{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := getAccount(ctx, tx, id, true)
	if err != nil {
		return Account{}, err
	}

	next, err := fn(current)
	if err != nil {
		return Account{}, err
	}
	if next.Id != current.Id {
		return Account{}, fmt.Errorf("mutation changed account id from %d to %d", current.Id, next.Id)
	}

	if err := upsertAccount(ctx, tx, next); err != nil {
		return Account{}, err
	}

	// Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return Account{}, fmt.Errorf("failed to commit %s on account %d: %w", operation, id, err)
	}

	return next, nil
}

func getAccount(ctx context.Context, db querier, id int64, forUpdate bool) (Account, error) {
	// pgx cannot encode ids past the int4 range
	if !InRange(id) {
		return Account{}, ErrNotFound
	}

	builder := psql.
		Select("id", "name", "COALESCE(balance, 0)").
		From(tableName).
		Where(sq.Eq{"id": id})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return Account{}, fmt.Errorf("failed to build select: %w", err)
	}

	var acc Account
	var balance float64
	if err := db.QueryRow(ctx, query, args...).Scan(&acc.Id, &acc.Name, &balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	if math.IsInf(balance, 0) || math.IsNaN(balance) {
		return Account{}, fmt.Errorf("account %d holds non-finite balance %v", id, balance)
	}
	acc.Balance = decimal.NewFromFloat(balance)

	return acc, nil
}

func upsertAccount(ctx context.Context, db querier, acc Account) error {
	if !InRange(acc.Id) {
		return fmt.Errorf("account id %d out of range", acc.Id)
	}
	if !fitsFloat(acc.Balance) {
		return fmt.Errorf("balance %s of account %d does not fit a FLOAT", acc.Balance, acc.Id)
	}

	query, args, err := psql.
		Insert(tableName).
		Columns("id", "name", "balance").
		Values(acc.Id, acc.Name, acc.Balance.InexactFloat64()).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, balance = EXCLUDED.balance").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}

	if _, err := db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save account %d: %w", acc.Id, err)
	}
	return nil
}

func (s *Store) startSpan(ctx context.Context, op string, id int64) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "account.store."+op, trace.WithAttributes(attribute.Int64("account.id", id)))
}

func (s *Store) recordMutation(ctx context.Context, operation string, err error) {
	s.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome(err)),
	))
}

// outcome buckets a mutation result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "committed"
	case isDomainError(err):
		return "rejected"
	default:
		return "failed"
	}
}

func isDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientFunds)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !isDomainError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
