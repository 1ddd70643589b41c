package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/auth"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/logger"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/repository"
)

// UserPostgres stores users and their role grants. Passwords are hashed
// with the configured Hasher before they reach the database.
type UserPostgres struct {
	base
	hasher auth.Hasher
}

func NewUserPostgres(db *sql.DB, hasher auth.Hasher, opts ...Option) *UserPostgres {
	return &UserPostgres{base: newBase(db, opts), hasher: hasher}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// AddUser inserts the user and its grants in one transaction.
func (r *UserPostgres) AddUser(ctx context.Context, u model.NewUser) (*model.User, error) {
	hash, err := r.hasher.Hash(u.Password)
	if errors.Is(err, auth.ErrEmptyPassword) {
		return nil, errs.NewBadRequestError("password is required")
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	out := &model.User{Name: u.Name, Email: u.Email, Roles: []model.RoleGrant{}}
	err = r.withTx(ctx, func(tx querier) error {
		const q = `INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING id`
		row := r.queryRow(ctx, tx, logger.Statement{
			Op:     "user.add",
			Query:  q,
			Args:   []any{u.Name, u.Email, hash},
			Redact: []int{2},
			Write:  true,
		})
		if err := row.Scan(&out.ID); err != nil {
			return classify("user.add", err)
		}

		for _, g := range u.Roles {
			grant, err := r.resolveGrant(ctx, tx, g)
			if err != nil {
				return err
			}
			if err := r.insertGrant(ctx, tx, out.ID, grant); err != nil {
				return err
			}
			if !slices.Contains(out.Roles, grant) {
				out.Roles = append(out.Roles, grant)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// resolveGrant turns a franchisee grant naming its franchise, by name or
// by id, into one carrying the id of an existing franchise. Other roles
// carry no object.
func (r *UserPostgres) resolveGrant(ctx context.Context, q querier, g model.RoleGrant) (model.RoleGrant, error) {
	if g.Role != model.RoleFranchisee {
		return model.RoleGrant{Role: g.Role}, nil
	}

	st := logger.Statement{Op: "user.resolve_franchise"}
	var label string
	switch {
	case g.Object != "":
		st.Query, st.Args, label = `SELECT id FROM franchises WHERE name = $1`, []any{g.Object}, g.Object
	case g.ObjectID != 0:
		st.Query, st.Args, label = `SELECT id FROM franchises WHERE id = $1`, []any{g.ObjectID}, fmt.Sprint(g.ObjectID)
	default:
		return model.RoleGrant{}, errs.NewBadRequestError("franchisee role requires a franchise")
	}

	var id int64
	if err := r.queryRow(ctx, q, st).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RoleGrant{}, errs.NewNotFoundError(fmt.Sprintf("unknown franchise %s", label))
		}
		return model.RoleGrant{}, classify(st.Op, err)
	}
	return model.RoleGrant{Role: g.Role, ObjectID: id}, nil
}

func (r *UserPostgres) insertGrant(ctx context.Context, q querier, userID int64, g model.RoleGrant) error {
	_, err := r.exec(ctx, q, logger.Statement{
		Op:    "user.grant",
		Query: insertGrantQuery,
		Args:  []any{userID, string(g.Role), g.ObjectID},
	})
	return classify("user.grant", err)
}

const insertGrantQuery = `INSERT INTO user_roles (user_id, role, object_id) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, role, object_id) DO NOTHING`

// GetUser answers ErrUnknownUser for an unknown email and for a wrong
// password alike.
func (r *UserPostgres) GetUser(ctx context.Context, email, password string) (*model.User, error) {
	var out *model.User
	err := r.withConn(ctx, func(c querier) error {
		const q = `SELECT id, name, email, password FROM users WHERE email = $1`
		var (
			u    model.User
			hash string
		)
		row := r.queryRow(ctx, c, logger.Statement{Op: "user.get", Query: q, Args: []any{email}})
		if err := row.Scan(&u.ID, &u.Name, &u.Email, &hash); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.ErrUnknownUser
			}
			return classify("user.get", err)
		}
		if !r.hasher.Verify(hash, password) {
			return errs.ErrUnknownUser
		}

		roles, err := r.loadRoles(ctx, c, u.ID)
		if err != nil {
			return err
		}
		u.Roles = roles
		out = &u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUser rewrites the supplied fields and returns the user as stored.
func (r *UserPostgres) UpdateUser(ctx context.Context, userID int64, upd model.UserUpdate) (*model.User, error) {
	var (
		sets   []string
		args   []any
		redact []int
	)
	if upd.Email != nil && *upd.Email != "" {
		args = append(args, *upd.Email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}
	if upd.Password != nil && *upd.Password != "" {
		hash, err := r.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		args = append(args, hash)
		sets = append(sets, fmt.Sprintf("password = $%d", len(args)))
		redact = append(redact, len(args)-1)
	}

	var out *model.User
	err := r.withTx(ctx, func(tx querier) error {
		if len(sets) > 0 {
			args := append(args, userID)
			q := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
			res, err := r.exec(ctx, tx, logger.Statement{Op: "user.update", Query: q, Args: args, Redact: redact})
			if err != nil {
				return classify("user.update", err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return errs.NewNotFoundError(fmt.Sprintf("unknown user %d", userID))
			}
		}

		u, err := r.loadUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserPostgres) loadUser(ctx context.Context, q querier, userID int64) (*model.User, error) {
	const sel = `SELECT id, name, email FROM users WHERE id = $1`
	var u model.User
	row := r.queryRow(ctx, q, logger.Statement{Op: "user.load", Query: sel, Args: []any{userID}})
	if err := row.Scan(&u.ID, &u.Name, &u.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NewNotFoundError(fmt.Sprintf("unknown user %d", userID))
		}
		return nil, classify("user.load", err)
	}
	roles, err := r.loadRoles(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (r *UserPostgres) loadRoles(ctx context.Context, q querier, userID int64) ([]model.RoleGrant, error) {
	const sel = `SELECT role, object_id FROM user_roles WHERE user_id = $1 ORDER BY id`
	rows, err := r.query(ctx, q, logger.Statement{Op: "user.roles", Query: sel, Args: []any{userID}})
	if err != nil {
		return nil, classify("user.roles", err)
	}
	defer rows.Close()

	roles := make([]model.RoleGrant, 0)
	for rows.Next() {
		var (
			g    model.RoleGrant
			role string
		)
		if err := rows.Scan(&role, &g.ObjectID); err != nil {
			return nil, err
		}
		g.Role = model.Role(role)
		roles = append(roles, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}
