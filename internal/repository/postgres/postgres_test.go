package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/database"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
)

// stubHasher keeps tests fast by skipping bcrypt.
type stubHasher struct{}

func (stubHasher) Hash(p string) (string, error) {
	if p == "" {
		return "", errors.New("password is empty")
	}
	return "hashed:" + p, nil
}

func (stubHasher) Verify(hash, p string) bool {
	return p != "" && hash == "hashed:"+p
}

func newMock(t *testing.T) (*base, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	b := newBase(db, nil)
	return &b, mock
}

func TestClassify(t *testing.T) {
	t.Run("unique violation is a conflict", func(t *testing.T) {
		err := classify("franchise.create", &pgconn.PgError{Code: pgUniqueViolation, TableName: "franchises"})
		assert.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, "franchise already exists", err.Error())
	})

	t.Run("foreign key violation is not found", func(t *testing.T) {
		err := classify("order.add_item", &pgconn.PgError{Code: pgForeignKeyViolation, TableName: "order_items"})
		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.Equal(t, "referenced order item does not exist", err.Error())
	})

	t.Run("classified errors pass through", func(t *testing.T) {
		err := classify("user.get", errs.ErrUnknownUser)
		assert.Same(t, errs.ErrUnknownUser, err)
	})

	t.Run("other errors are wrapped with the operation", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := classify("menu.get", cause)
		assert.ErrorIs(t, err, cause)
		assert.True(t, strings.HasPrefix(err.Error(), "menu.get: "))
	})

	assert.NoError(t, classify("noop", nil))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1", placeholders(1, 1))
	assert.Equal(t, "$2, $3, $4", placeholders(2, 3))
	assert.Equal(t, "", placeholders(1, 0))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	b, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := b.withTx(context.Background(), func(q querier) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_Commits(t *testing.T) {
	b, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := b.withTx(context.Background(), func(q querier) error { return nil })

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGate_FailedBootstrapReachesEveryCall(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gate := database.NewReadiness()
	gate.Resolve(errors.New("migration step create_table_users failed"))

	menu := NewMenuPostgres(db, WithGate(gate))
	_, err = menu.GetMenu(context.Background())
	assert.ErrorContains(t, err, "database not ready")

	sessions := NewSessionPostgres(db, WithGate(gate))
	_, err = sessions.IsValid(context.Background(), "a.b.c")
	assert.ErrorContains(t, err, "database not ready")

	assert.NoError(t, mock.ExpectationsWereMet())
}
