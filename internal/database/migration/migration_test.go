package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
)

type recordingSeeder struct {
	calls []model.NewUser
	err   error
}

func (s *recordingSeeder) AddUser(_ context.Context, u model.NewUser) (*model.User, error) {
	s.calls = append(s.calls, u)
	if s.err != nil {
		return nil, s.err
	}
	return &model.User{ID: 1, Name: u.Name, Email: u.Email, Roles: u.Roles}, nil
}

var admin = AdminAccount{Name: "常用名字", Email: "a@jwt.com", Password: "admin"}

const sentinelQuery = "SELECT to_regclass($1) IS NOT NULL"

func expectSteps(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	for _, s := range steps {
		mock.ExpectExec(regexp.QuoteMeta(s.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()
}

func TestBootstrap_SchemaExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WithArgs(sentinelTable).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(adminExistsQuery)).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	seeder := &recordingSeeder{}
	res, err := Bootstrap(context.Background(), db, seeder, admin, zerolog.Nop())

	assert.NoError(t, err)
	assert.False(t, res.Created)
	assert.Zero(t, res.AdminID)
	assert.Empty(t, seeder.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrap_FreshDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WithArgs(sentinelTable).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	expectSteps(mock)

	seeder := &recordingSeeder{}
	res, err := Bootstrap(context.Background(), db, seeder, admin, zerolog.Nop())

	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, int64(1), res.AdminID)
	require.Len(t, seeder.calls, 1)
	assert.Equal(t, "a@jwt.com", seeder.calls[0].Email)
	assert.Equal(t, []model.RoleGrant{{Role: model.RoleAdmin}}, seeder.calls[0].Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrap_StepFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	seeder := &recordingSeeder{}
	_, err = Bootstrap(context.Background(), db, seeder, admin, zerolog.Nop())

	assert.ErrorContains(t, err, steps[1].Name)
	assert.Empty(t, seeder.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrap_SentinelCheckFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).WillReturnError(errors.New("connection refused"))

	_, err = Bootstrap(context.Background(), db, &recordingSeeder{}, admin, zerolog.Nop())
	assert.ErrorContains(t, err, "sentinel")
}

func TestBootstrap_SeedFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	expectSteps(mock)

	seedErr := errors.New("unique violation")
	res, err := Bootstrap(context.Background(), db, &recordingSeeder{err: seedErr}, admin, zerolog.Nop())

	assert.ErrorIs(t, err, seedErr)
	assert.True(t, res.Created)
	assert.Zero(t, res.AdminID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrap_SeedRetriedAfterFailedRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// First run creates the schema but the seed fails.
	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	expectSteps(mock)

	failing := &recordingSeeder{err: errors.New("connection reset")}
	_, err = Bootstrap(context.Background(), db, failing, admin, zerolog.Nop())
	require.Error(t, err)

	// Second run finds the schema but no admin grant.
	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(adminExistsQuery)).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	seeder := &recordingSeeder{}
	res, err := Bootstrap(context.Background(), db, seeder, admin, zerolog.Nop())

	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, int64(1), res.AdminID)
	require.Len(t, seeder.calls, 1)
	assert.Equal(t, []model.RoleGrant{{Role: model.RoleAdmin}}, seeder.calls[0].Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrap_AdminCheckFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sentinelQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(adminExistsQuery)).WillReturnError(errors.New("connection refused"))

	seeder := &recordingSeeder{}
	_, err = Bootstrap(context.Background(), db, seeder, admin, zerolog.Nop())

	assert.ErrorContains(t, err, "admin grant")
	assert.Empty(t, seeder.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
