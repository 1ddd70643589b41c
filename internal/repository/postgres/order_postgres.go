package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/errs"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/logger"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
	"github.com/Ki11erRabbit/jwt-pizza-service/internal/repository"
)

// DefaultPerPage is used when the store is built with a non-positive page size.
const DefaultPerPage = 10

// OrderPostgres stores diner orders and their lines.
type OrderPostgres struct {
	base
	perPage int
}

func NewOrderPostgres(db *sql.DB, perPage int, opts ...Option) *OrderPostgres {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &OrderPostgres{base: newBase(db, opts), perPage: perPage}
}

var _ repository.OrderRepository = (*OrderPostgres)(nil)

// GetOrders returns one page of dinerID's orders in id order, so
// consecutive pages neither overlap nor skip rows.
func (r *OrderPostgres) GetOrders(ctx context.Context, dinerID int64, page int) (*model.OrderPage, error) {
	pq := repository.NewPageQuery(page, r.perPage)
	out := &model.OrderPage{DinerID: dinerID, Orders: []model.Order{}, Page: pq.Offset/pq.Limit + 1}

	err := r.withConn(ctx, func(c querier) error {
		const q = `SELECT id, franchise_id, store_id, date
			FROM diner_orders
			WHERE diner_id = $1
			ORDER BY id
			LIMIT $2 OFFSET $3`
		rows, err := r.query(ctx, c, logger.Statement{Op: "order.list", Query: q, Args: []any{dinerID, pq.Limit, pq.Offset}})
		if err != nil {
			return classify("order.list", err)
		}
		for rows.Next() {
			o := model.Order{DinerID: dinerID}
			if err := rows.Scan(&o.ID, &o.FranchiseID, &o.StoreID, &o.Date); err != nil {
				rows.Close()
				return err
			}
			out.Orders = append(out.Orders, o)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for i := range out.Orders {
			items, err := r.loadItems(ctx, c, out.Orders[i].ID)
			if err != nil {
				return err
			}
			out.Orders[i].Items = items
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OrderPostgres) loadItems(ctx context.Context, c querier, orderID int64) ([]model.OrderItem, error) {
	const q = `SELECT id, menu_id, description, price FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.query(ctx, c, logger.Statement{Op: "order.items", Query: q, Args: []any{orderID}})
	if err != nil {
		return nil, classify("order.items", err)
	}
	defer rows.Close()

	out := make([]model.OrderItem, 0)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.MenuID, &it.Description, &it.Price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// AddDinerOrder inserts the header and every line in one transaction. Each
// line stores the title and price of its catalog entry at order time; any
// description or price the client sent with the line is ignored. An unknown
// menu id fails the whole order with ErrNotFound.
func (r *OrderPostgres) AddDinerOrder(ctx context.Context, dinerID int64, o model.NewOrder) (*model.Order, error) {
	out := &model.Order{
		DinerID:     dinerID,
		FranchiseID: o.FranchiseID,
		StoreID:     o.StoreID,
		Items:       make([]model.OrderItem, 0, len(o.Items)),
	}

	err := r.withTx(ctx, func(tx querier) error {
		const ins = `INSERT INTO diner_orders (diner_id, franchise_id, store_id) VALUES ($1, $2, $3) RETURNING id, date`
		row := r.queryRow(ctx, tx, logger.Statement{
			Op:    "order.add",
			Query: ins,
			Args:  []any{dinerID, o.FranchiseID, o.StoreID},
			Write: true,
		})
		if err := row.Scan(&out.ID, &out.Date); err != nil {
			return classify("order.add", err)
		}

		for _, it := range o.Items {
			line := model.OrderItem{MenuID: it.MenuID}
			const sel = `SELECT title, price FROM menu WHERE id = $1`
			row := r.queryRow(ctx, tx, logger.Statement{Op: "order.resolve_menu", Query: sel, Args: []any{it.MenuID}})
			if err := row.Scan(&line.Description, &line.Price); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return errs.NewNotFoundError(fmt.Sprintf("unknown menu item %d", it.MenuID))
				}
				return classify("order.resolve_menu", err)
			}

			const insItem = `INSERT INTO order_items (order_id, menu_id, description, price) VALUES ($1, $2, $3, $4) RETURNING id`
			row = r.queryRow(ctx, tx, logger.Statement{
				Op:    "order.add_item",
				Query: insItem,
				Args:  []any{out.ID, line.MenuID, line.Description, line.Price},
				Write: true,
			})
			if err := row.Scan(&line.ID); err != nil {
				return classify("order.add_item", err)
			}
			out.Items = append(out.Items, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
