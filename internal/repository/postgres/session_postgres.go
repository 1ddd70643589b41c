package postgres

import (
	"context"
	"database/sql"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/auth"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/logger"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/repository"
)

// SessionPostgres persists the derived key of each live credential.
type SessionPostgres struct {
	base
}

func NewSessionPostgres(db *sql.DB, opts ...Option) *SessionPostgres {
	return &SessionPostgres{base: newBase(db, opts)}
}

var _ repository.SessionRepository = (*SessionPostgres)(nil)

// Issue records credential for userID. Issuing the same credential twice
// keeps a single row.
func (r *SessionPostgres) Issue(ctx context.Context, userID int64, credential string) error {
	const q = `INSERT INTO auth_sessions (token, user_id) VALUES ($1, $2) ON CONFLICT (token) DO NOTHING`
	return r.withConn(ctx, func(c querier) error {
		_, err := r.exec(ctx, c, logger.Statement{
			Op:     "session.issue",
			Query:  q,
			Args:   []any{auth.SessionKey(credential), userID},
			Redact: []int{0},
		})
		return classify("session.issue", err)
	})
}

func (r *SessionPostgres) IsValid(ctx context.Context, credential string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM auth_sessions WHERE token = $1)`
	var ok bool
	err := r.withConn(ctx, func(c querier) error {
		row := r.queryRow(ctx, c, logger.Statement{
			Op:     "session.is_valid",
			Query:  q,
			Args:   []any{auth.SessionKey(credential)},
			Redact: []int{0},
		})
		return classify("session.is_valid", row.Scan(&ok))
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *SessionPostgres) Revoke(ctx context.Context, credential string) error {
	const q = `DELETE FROM auth_sessions WHERE token = $1`
	return r.withConn(ctx, func(c querier) error {
		_, err := r.exec(ctx, c, logger.Statement{
			Op:     "session.revoke",
			Query:  q,
			Args:   []any{auth.SessionKey(credential)},
			Redact: []int{0},
		})
		return classify("session.revoke", err)
	})
}
