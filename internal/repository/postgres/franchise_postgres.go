package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/logger"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/repository"
)

// FranchisePostgres stores franchises, their stores and franchisee grants.
type FranchisePostgres struct {
	base
}

func NewFranchisePostgres(db *sql.DB, opts ...Option) *FranchisePostgres {
	return &FranchisePostgres{base: newBase(db, opts)}
}

var _ repository.FranchiseRepository = (*FranchisePostgres)(nil)

// CreateFranchise resolves every admin email, inserts the franchise and
// grants each admin the franchisee role on it, all in one transaction.
func (r *FranchisePostgres) CreateFranchise(ctx context.Context, f model.NewFranchise) (*model.Franchise, error) {
	out := &model.Franchise{Name: f.Name, Admins: []model.FranchiseAdmin{}, Stores: []model.Store{}}

	err := r.withTx(ctx, func(tx querier) error {
		for _, a := range f.Admins {
			const q = `SELECT id, name FROM users WHERE email = $1`
			admin := model.FranchiseAdmin{Email: a.Email}
			row := r.queryRow(ctx, tx, logger.Statement{Op: "franchise.resolve_admin", Query: q, Args: []any{a.Email}})
			if err := row.Scan(&admin.ID, &admin.Name); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return errs.NewNotFoundError(fmt.Sprintf("unknown user for franchise admin %s provided", a.Email))
				}
				return classify("franchise.resolve_admin", err)
			}
			out.Admins = append(out.Admins, admin)
		}

		const ins = `INSERT INTO franchises (name) VALUES ($1) RETURNING id`
		row := r.queryRow(ctx, tx, logger.Statement{Op: "franchise.create", Query: ins, Args: []any{f.Name}, Write: true})
		if err := row.Scan(&out.ID); err != nil {
			return classify("franchise.create", err)
		}

		for _, a := range out.Admins {
			_, err := r.exec(ctx, tx, logger.Statement{
				Op:    "franchise.grant",
				Query: insertGrantQuery,
				Args:  []any{a.ID, string(model.RoleFranchisee), out.ID},
			})
			if err != nil {
				return classify("franchise.grant", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteFranchise removes the stores, the franchisee grants and the
// franchise row in one transaction. Any failure rolls everything back and
// is reported as a generic internal error.
func (r *FranchisePostgres) DeleteFranchise(ctx context.Context, franchiseID int64) error {
	err := r.withTx(ctx, func(tx querier) error {
		stmts := []logger.Statement{
			{Op: "franchise.delete_stores", Query: `DELETE FROM stores WHERE franchise_id = $1`, Args: []any{franchiseID}},
			{Op: "franchise.delete_grants", Query: `DELETE FROM user_roles WHERE object_id = $1 AND role = $2`, Args: []any{franchiseID, string(model.RoleFranchisee)}},
			{Op: "franchise.delete", Query: `DELETE FROM franchises WHERE id = $1`, Args: []any{franchiseID}},
		}
		for _, st := range stmts {
			if _, err := r.exec(ctx, tx, st); err != nil {
				return fmt.Errorf("%s: %w", st.Op, err)
			}
		}
		return nil
	})
	if err != nil {
		r.log.Error().Err(err).Int64("franchise_id", franchiseID).Msg("franchise deletion rolled back")
		return errs.NewInternalError("unable to delete franchise", err)
	}
	return nil
}

// ListFranchises returns every franchise in the requested projection.
func (r *FranchisePostgres) ListFranchises(ctx context.Context, proj model.FranchiseProjection) ([]model.Franchise, error) {
	var out []model.Franchise
	err := r.withConn(ctx, func(c querier) error {
		const q = `SELECT id, name FROM franchises ORDER BY id`
		franchises, err := r.scanFranchises(ctx, c, logger.Statement{Op: "franchise.list", Query: q})
		if err != nil {
			return err
		}
		for i := range franchises {
			if err := r.enrich(ctx, c, &franchises[i], proj); err != nil {
				return err
			}
		}
		out = franchises
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListUserFranchises returns, in the full projection, the franchises
// userID administers. Without any franchisee grant no franchise is queried.
func (r *FranchisePostgres) ListUserFranchises(ctx context.Context, userID int64) ([]model.Franchise, error) {
	out := []model.Franchise{}
	err := r.withConn(ctx, func(c querier) error {
		const q = `SELECT object_id FROM user_roles WHERE user_id = $1 AND role = $2 ORDER BY object_id`
		rows, err := r.query(ctx, c, logger.Statement{
			Op:    "franchise.user_grants",
			Query: q,
			Args:  []any{userID, string(model.RoleFranchisee)},
		})
		if err != nil {
			return classify("franchise.user_grants", err)
		}
		var ids []any
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		sel := fmt.Sprintf(`SELECT id, name FROM franchises WHERE id IN (%s) ORDER BY id`, placeholders(1, len(ids)))
		franchises, err := r.scanFranchises(ctx, c, logger.Statement{Op: "franchise.list_user", Query: sel, Args: ids})
		if err != nil {
			return err
		}
		for i := range franchises {
			if err := r.enrich(ctx, c, &franchises[i], model.ProjectionFull); err != nil {
				return err
			}
		}
		out = franchises
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetFranchise returns one franchise in the full projection.
func (r *FranchisePostgres) GetFranchise(ctx context.Context, franchiseID int64) (*model.Franchise, error) {
	var out *model.Franchise
	err := r.withConn(ctx, func(c querier) error {
		const q = `SELECT id, name FROM franchises WHERE id = $1`
		f := model.Franchise{}
		row := r.queryRow(ctx, c, logger.Statement{Op: "franchise.get", Query: q, Args: []any{franchiseID}})
		if err := row.Scan(&f.ID, &f.Name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.NewNotFoundError(fmt.Sprintf("unknown franchise %d", franchiseID))
			}
			return classify("franchise.get", err)
		}
		if err := r.enrich(ctx, c, &f, model.ProjectionFull); err != nil {
			return err
		}
		out = &f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *FranchisePostgres) CreateStore(ctx context.Context, franchiseID int64, s model.NewStore) (*model.Store, error) {
	out := &model.Store{FranchiseID: franchiseID, Name: s.Name}
	err := r.withConn(ctx, func(c querier) error {
		const q = `INSERT INTO stores (franchise_id, name) VALUES ($1, $2) RETURNING id`
		row := r.queryRow(ctx, c, logger.Statement{Op: "store.create", Query: q, Args: []any{franchiseID, s.Name}, Write: true})
		if err := row.Scan(&out.ID); err != nil {
			if pgCode(err) == pgForeignKeyViolation {
				e := errs.NewNotFoundError(fmt.Sprintf("unknown franchise %d", franchiseID))
				e.Err = err
				return e
			}
			return classify("store.create", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteStore deletes storeID only when it belongs to franchiseID.
func (r *FranchisePostgres) DeleteStore(ctx context.Context, franchiseID, storeID int64) error {
	return r.withConn(ctx, func(c querier) error {
		const q = `DELETE FROM stores WHERE franchise_id = $1 AND id = $2`
		_, err := r.exec(ctx, c, logger.Statement{Op: "store.delete", Query: q, Args: []any{franchiseID, storeID}})
		return classify("store.delete", err)
	})
}

// scanFranchises reads id/name rows and closes them before returning so
// the connection is free for the enrichment queries.
func (r *FranchisePostgres) scanFranchises(ctx context.Context, c querier, st logger.Statement) ([]model.Franchise, error) {
	rows, err := r.query(ctx, c, st)
	if err != nil {
		return nil, classify(st.Op, err)
	}
	defer rows.Close()

	out := make([]model.Franchise, 0)
	for rows.Next() {
		var f model.Franchise
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *FranchisePostgres) enrich(ctx context.Context, c querier, f *model.Franchise, proj model.FranchiseProjection) error {
	if proj == model.ProjectionFull {
		admins, err := r.loadAdmins(ctx, c, f.ID)
		if err != nil {
			return err
		}
		f.Admins = admins
	}
	stores, err := r.loadStores(ctx, c, f.ID, proj)
	if err != nil {
		return err
	}
	f.Stores = stores
	return nil
}

func (r *FranchisePostgres) loadAdmins(ctx context.Context, c querier, franchiseID int64) ([]model.FranchiseAdmin, error) {
	const q = `SELECT u.id, u.name, u.email
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.role = $1 AND ur.object_id = $2
		ORDER BY u.id`
	rows, err := r.query(ctx, c, logger.Statement{
		Op:    "franchise.admins",
		Query: q,
		Args:  []any{string(model.RoleFranchisee), franchiseID},
	})
	if err != nil {
		return nil, classify("franchise.admins", err)
	}
	defer rows.Close()

	out := make([]model.FranchiseAdmin, 0)
	for rows.Next() {
		var a model.FranchiseAdmin
		if err := rows.Scan(&a.ID, &a.Name, &a.Email); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *FranchisePostgres) loadStores(ctx context.Context, c querier, franchiseID int64, proj model.FranchiseProjection) ([]model.Store, error) {
	q := `SELECT id, name FROM stores WHERE franchise_id = $1 ORDER BY id`
	if proj == model.ProjectionFull {
		q = `SELECT s.id, s.name, COALESCE(SUM(oi.price), 0)
		FROM stores s
		LEFT JOIN diner_orders o ON o.store_id = s.id
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE s.franchise_id = $1
		GROUP BY s.id, s.name
		ORDER BY s.id`
	}
	rows, err := r.query(ctx, c, logger.Statement{Op: "franchise.stores", Query: q, Args: []any{franchiseID}})
	if err != nil {
		return nil, classify("franchise.stores", err)
	}
	defer rows.Close()

	out := make([]model.Store, 0)
	for rows.Next() {
		var s model.Store
		if proj == model.ProjectionFull {
			var revenue decimal.Decimal
			if err := rows.Scan(&s.ID, &s.Name, &revenue); err != nil {
				return nil, err
			}
			s.TotalRevenue = &revenue
		} else if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
