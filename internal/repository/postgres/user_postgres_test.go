package postgres

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/logger"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
)

func TestUserPostgres_AddUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var logs bytes.Buffer
	repo := NewUserPostgres(db, stubHasher{}, WithLogger(logger.New(logger.Options{Level: "debug", Output: &logs})))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id")).
		WithArgs("pizza franchisee", "f@jwt.com", "hashed:franchisee").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectExec("INSERT INTO user_roles").
		WithArgs(int64(4), "diner", int64(0)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM franchises WHERE name = $1")).
		WithArgs("pizzaPocket").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectExec("INSERT INTO user_roles").
		WithArgs(int64(4), "franchisee", int64(2)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	u, err := repo.AddUser(context.Background(), model.NewUser{
		Name:     "pizza franchisee",
		Email:    "f@jwt.com",
		Password: "franchisee",
		Roles: []model.RoleGrant{
			{Role: model.RoleDiner},
			{Role: model.RoleFranchisee, Object: "pizzaPocket"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4), u.ID)
	assert.Equal(t, []model.RoleGrant{
		{Role: model.RoleDiner},
		{Role: model.RoleFranchisee, ObjectID: 2},
	}, u.Roles)
	assert.NotContains(t, logs.String(), "hashed:franchisee")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_AddUser_UnknownFranchiseRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db, stubHasher{})

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery("SELECT id FROM franchises").WithArgs("nowhere").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	u, err := repo.AddUser(context.Background(), model.NewUser{
		Name: "x", Email: "x@jwt.com", Password: "x",
		Roles: []model.RoleGrant{{Role: model.RoleFranchisee, Object: "nowhere"}},
	})

	assert.Nil(t, u)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Equal(t, "unknown franchise nowhere", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_AddUser_FranchiseByID(t *testing.T) {
	byID := regexp.QuoteMeta("SELECT id FROM franchises WHERE id = $1")

	t.Run("existing franchise", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(6))
		mock.ExpectQuery(byID).WithArgs(int64(2)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectExec("INSERT INTO user_roles").
			WithArgs(int64(6), "franchisee", int64(2)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		u, err := NewUserPostgres(db, stubHasher{}).AddUser(context.Background(), model.NewUser{
			Name: "x", Email: "x@jwt.com", Password: "x",
			Roles: []model.RoleGrant{{Role: model.RoleFranchisee, ObjectID: 2}},
		})

		require.NoError(t, err)
		assert.Equal(t, []model.RoleGrant{{Role: model.RoleFranchisee, ObjectID: 2}}, u.Roles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing franchise rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectQuery(byID).WithArgs(int64(999)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		u, err := NewUserPostgres(db, stubHasher{}).AddUser(context.Background(), model.NewUser{
			Name: "x", Email: "x@jwt.com", Password: "x",
			Roles: []model.RoleGrant{{Role: model.RoleFranchisee, ObjectID: 999}},
		})

		assert.Nil(t, u)
		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.Equal(t, "unknown franchise 999", err.Error())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("franchisee without a franchise", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO users").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
		mock.ExpectRollback()

		_, err = NewUserPostgres(db, stubHasher{}).AddUser(context.Background(), model.NewUser{
			Name: "x", Email: "x@jwt.com", Password: "x",
			Roles: []model.RoleGrant{{Role: model.RoleFranchisee}},
		})

		assert.ErrorIs(t, err, errs.ErrBadRequest)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserPostgres_AddUser_EmptyPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db, stubHasher{})
	_, err = repo.AddUser(context.Background(), model.NewUser{Name: "x", Email: "x@jwt.com"})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_GetUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db, stubHasher{})
	ctx := context.Background()
	getQ := regexp.QuoteMeta("SELECT id, name, email, password FROM users WHERE email = $1")
	rolesQ := regexp.QuoteMeta("SELECT role, object_id FROM user_roles WHERE user_id = $1 ORDER BY id")

	t.Run("valid credentials", func(t *testing.T) {
		mock.ExpectQuery(getQ).WithArgs("d@jwt.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}).
				AddRow(3, "pizza diner", "d@jwt.com", "hashed:diner"))
		mock.ExpectQuery(rolesQ).WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"role", "object_id"}).AddRow("diner", 0))

		u, err := repo.GetUser(ctx, "d@jwt.com", "diner")

		require.NoError(t, err)
		assert.Equal(t, &model.User{
			ID: 3, Name: "pizza diner", Email: "d@jwt.com",
			Roles: []model.RoleGrant{{Role: model.RoleDiner}},
		}, u)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		mock.ExpectQuery(getQ).WithArgs("d@jwt.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}).
				AddRow(3, "pizza diner", "d@jwt.com", "hashed:diner"))
		mock.ExpectQuery(getQ).WithArgs("nobody@jwt.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}))

		_, wrongPassword := repo.GetUser(ctx, "d@jwt.com", "guess")
		_, unknownEmail := repo.GetUser(ctx, "nobody@jwt.com", "diner")

		assert.ErrorIs(t, wrongPassword, errs.ErrUnknownUser)
		assert.Equal(t, wrongPassword, unknownEmail)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_UpdateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserPostgres(db, stubHasher{})
	ctx := context.Background()
	email := "new@jwt.com"
	password := "s3cret"

	t.Run("email and password", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email = $1, password = $2 WHERE id = $3")).
			WithArgs(email, "hashed:s3cret", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email FROM users WHERE id = $1")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(3, "pizza diner", email))
		mock.ExpectQuery("SELECT role, object_id FROM user_roles").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"role", "object_id"}).AddRow("diner", 0))
		mock.ExpectCommit()

		u, err := repo.UpdateUser(ctx, 3, model.UserUpdate{Email: &email, Password: &password})

		require.NoError(t, err)
		assert.Equal(t, email, u.Email)
		assert.Len(t, u.Roles, 1)
	})

	t.Run("only password", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password = $1 WHERE id = $2")).
			WithArgs("hashed:s3cret", int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT id, name, email FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(3, "pizza diner", "d@jwt.com"))
		mock.ExpectQuery("SELECT role, object_id FROM user_roles").
			WillReturnRows(sqlmock.NewRows([]string{"role", "object_id"}))
		mock.ExpectCommit()

		u, err := repo.UpdateUser(ctx, 3, model.UserUpdate{Password: &password})

		require.NoError(t, err)
		assert.Equal(t, "d@jwt.com", u.Email)
		assert.Empty(t, u.Roles)
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE users SET email").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.UpdateUser(ctx, 99, model.UserUpdate{Email: &email})

		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
