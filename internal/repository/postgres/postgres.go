// Package postgres implements the repository interfaces on PostgreSQL using
// database/sql with parameterized queries.
//
// Every operation runs inside a single scope, a dedicated *sql.Conn for
// reads and a *sql.Tx for multi-row writes, released on every exit path.
// Statements are handed to logger.SQL before they run.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/logger"
)

// PostgreSQL error codes the stores classify.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Gate blocks until the schema is ready. database.Readiness implements it.
type Gate interface {
	Wait(ctx context.Context) error
}

// querier is satisfied by *sql.Conn and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Option configures a store.
type Option func(*base)

// WithLogger sets the logger statements are recorded on.
func WithLogger(l zerolog.Logger) Option {
	return func(b *base) { b.log = l }
}

// WithGate makes every operation wait on g first.
func WithGate(g Gate) Option {
	return func(b *base) { b.gate = g }
}

type base struct {
	db   *sql.DB
	log  zerolog.Logger
	gate Gate
}

func newBase(db *sql.DB, opts []Option) base {
	b := base{db: db, log: logger.Get()}
	for _, o := range opts {
		o(&b)
	}
	return b
}

func (b *base) ready(ctx context.Context) error {
	if b.gate == nil {
		return nil
	}
	return b.gate.Wait(ctx)
}

// withConn runs fn on a connection held for the duration of the call.
func (b *base) withConn(ctx context.Context, fn func(q querier) error) error {
	if err := b.ready(ctx); err != nil {
		return err
	}
	conn, err := b.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// withTx runs fn in a transaction, committing when fn returns nil and
// rolling back otherwise.
func (b *base) withTx(ctx context.Context, fn func(q querier) error) (err error) {
	if err := b.ready(ctx); err != nil {
		return err
	}
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				b.log.Error().Err(rbErr).Msg("rollback failed")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (b *base) exec(ctx context.Context, q querier, st logger.Statement) (sql.Result, error) {
	st.Write = true
	logger.SQL(b.log, st)
	return q.ExecContext(ctx, st.Query, st.Args...)
}

func (b *base) query(ctx context.Context, q querier, st logger.Statement) (*sql.Rows, error) {
	logger.SQL(b.log, st)
	return q.QueryContext(ctx, st.Query, st.Args...)
}

func (b *base) queryRow(ctx context.Context, q querier, st logger.Statement) *sql.Row {
	logger.SQL(b.log, st)
	return q.QueryRowContext(ctx, st.Query, st.Args...)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// classify maps constraint violations onto the error taxonomy and wraps
// anything else with op.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *errs.Error
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errs.NewConflictError(fmt.Sprintf("%s already exists", entityName(pgErr.TableName)), err)
		case pgForeignKeyViolation:
			e := errs.NewNotFoundError(fmt.Sprintf("referenced %s does not exist", entityName(pgErr.TableName)))
			e.Err = err
			return e
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func entityName(table string) string {
	if table == "" {
		return "record"
	}
	return strings.TrimSuffix(strings.ReplaceAll(table, "_", " "), "s")
}

// placeholders returns "$from, $from+1, ..." for n parameters.
func placeholders(from, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "$%d", from+i)
	}
	return sb.String()
}
