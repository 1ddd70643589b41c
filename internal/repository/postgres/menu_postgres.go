package postgres

import (
	"context"
	"database/sql"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/logger"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/repository"
)

// MenuPostgres serves the catalog.
type MenuPostgres struct {
	base
}

func NewMenuPostgres(db *sql.DB, opts ...Option) *MenuPostgres {
	return &MenuPostgres{base: newBase(db, opts)}
}

var _ repository.MenuRepository = (*MenuPostgres)(nil)

// GetMenu returns the whole catalog ordered by id.
func (r *MenuPostgres) GetMenu(ctx context.Context) ([]model.MenuItem, error) {
	out := make([]model.MenuItem, 0)
	err := r.withConn(ctx, func(c querier) error {
		const q = `SELECT id, title, description, image, price FROM menu ORDER BY id`
		rows, err := r.query(ctx, c, logger.Statement{Op: "menu.get", Query: q})
		if err != nil {
			return classify("menu.get", err)
		}
		defer rows.Close()

		for rows.Next() {
			var m model.MenuItem
			if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Image, &m.Price); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MenuPostgres) AddMenuItem(ctx context.Context, item model.MenuItem) (*model.MenuItem, error) {
	out := item
	err := r.withConn(ctx, func(c querier) error {
		const q = `INSERT INTO menu (title, description, image, price) VALUES ($1, $2, $3, $4) RETURNING id`
		row := r.queryRow(ctx, c, logger.Statement{
			Op:    "menu.add",
			Query: q,
			Args:  []any{item.Title, item.Description, item.Image, item.Price},
			Write: true,
		})
		return classify("menu.add", row.Scan(&out.ID))
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
