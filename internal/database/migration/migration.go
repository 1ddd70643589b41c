package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ki11erRabbit/jwt-pizza-service/internal/model"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the first step; its presence means the schema
// already exists.
const sentinelTable = "public.users"

var steps = []migrationStep{
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id       BIGSERIAL PRIMARY KEY,
  name     TEXT      NOT NULL,
  email    TEXT      NOT NULL UNIQUE,
  password TEXT      NOT NULL
);`,
	},
	{
		Name: "create_table_franchises",
		SQL: `CREATE TABLE IF NOT EXISTS franchises (
  id   BIGSERIAL PRIMARY KEY,
  name TEXT      NOT NULL UNIQUE
);`,
	},
	{
		Name: "create_table_stores",
		SQL: `CREATE TABLE IF NOT EXISTS stores (
  id           BIGSERIAL PRIMARY KEY,
  franchise_id BIGINT    NOT NULL REFERENCES franchises (id),
  name         TEXT      NOT NULL
);`,
	},
	{
		Name: "create_table_user_roles",
		SQL: `CREATE TABLE IF NOT EXISTS user_roles (
  id        BIGSERIAL PRIMARY KEY,
  user_id   BIGINT    NOT NULL REFERENCES users (id),
  role      TEXT      NOT NULL,
  object_id BIGINT    NOT NULL DEFAULT 0,
  UNIQUE (user_id, role, object_id)
);`,
	},
	{
		Name: "create_table_menu",
		SQL: `CREATE TABLE IF NOT EXISTS menu (
  id          BIGSERIAL      PRIMARY KEY,
  title       TEXT           NOT NULL,
  description TEXT           NOT NULL DEFAULT '',
  image       TEXT           NOT NULL DEFAULT '',
  price       NUMERIC(12, 4) NOT NULL CHECK (price >= 0)
);`,
	},
	{
		Name: "create_table_diner_orders",
		SQL: `CREATE TABLE IF NOT EXISTS diner_orders (
  id           BIGSERIAL   PRIMARY KEY,
  diner_id     BIGINT      NOT NULL REFERENCES users (id),
  franchise_id BIGINT      NOT NULL,
  store_id     BIGINT      NOT NULL,
  date         TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_order_items",
		SQL: `CREATE TABLE IF NOT EXISTS order_items (
  id          BIGSERIAL      PRIMARY KEY,
  order_id    BIGINT         NOT NULL REFERENCES diner_orders (id),
  menu_id     BIGINT         NOT NULL REFERENCES menu (id),
  description TEXT           NOT NULL,
  price       NUMERIC(12, 4) NOT NULL
);`,
	},
	{
		Name: "create_table_auth_sessions",
		SQL: `CREATE TABLE IF NOT EXISTS auth_sessions (
  token      TEXT        PRIMARY KEY,
  user_id    BIGINT      NOT NULL REFERENCES users (id),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_stores_franchise_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stores_franchise_id ON stores (franchise_id);`,
	},
	{
		Name: "create_index_user_roles_object_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_user_roles_object_id ON user_roles (object_id);`,
	},
	{
		Name: "create_index_diner_orders_diner_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_diner_orders_diner_id ON diner_orders (diner_id);`,
	},
	{
		Name: "create_index_diner_orders_store_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_diner_orders_store_id ON diner_orders (store_id);`,
	},
	{
		Name: "create_index_order_items_order_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items (order_id);`,
	},
	{
		Name: "create_index_auth_sessions_user_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_auth_sessions_user_id ON auth_sessions (user_id);`,
	},
}

// AdminSeeder creates the first administrator once the schema exists.
type AdminSeeder interface {
	AddUser(ctx context.Context, u model.NewUser) (*model.User, error)
}

// AdminAccount is the identity seeded on first run.
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// Result reports what Bootstrap did. AdminID is set whenever this run
// seeded the administrator.
type Result struct {
	Created bool
	AdminID int64
}

const adminExistsQuery = `SELECT EXISTS (SELECT 1 FROM user_roles WHERE role = $1)`

// Bootstrap creates the schema in one transaction when the sentinel table is
// missing, then seeds the default administrator unless an admin grant already
// exists. A seed that failed on an earlier run is retried on the next one.
func Bootstrap(ctx context.Context, db *sql.DB, seeder AdminSeeder, admin AdminAccount, log zerolog.Logger) (Result, error) {
	log = log.With().Str("component", "database").Logger()
	start := time.Now()

	log.Info().Str("event", "db_migration_check").Str("status", "starting").Send()

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists); err != nil {
		log.Error().
			Err(err).
			Str("event", "db_migration_failed").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return Result{}, fmt.Errorf("failed to check sentinel table: %w", err)
	}

	var res Result
	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")

		var seeded bool
		if err := db.QueryRowContext(ctx, adminExistsQuery, string(model.RoleAdmin)).Scan(&seeded); err != nil {
			log.Error().Err(err).Str("event", "db_seed_failed").Msg("failed to check admin grant")
			return Result{}, fmt.Errorf("failed to check admin grant: %w", err)
		}
		if seeded {
			return Result{}, nil
		}
		log.Warn().Str("event", "db_seed_retry").Msg("schema exists without an admin, seeding")
	} else {
		if err := migrate(ctx, db, log); err != nil {
			return Result{}, err
		}
		res.Created = true
	}

	u, err := seeder.AddUser(ctx, model.NewUser{
		Name:     admin.Name,
		Email:    admin.Email,
		Password: admin.Password,
		Roles:    []model.RoleGrant{{Role: model.RoleAdmin}},
	})
	if err != nil {
		log.Error().Err(err).Str("event", "db_seed_failed").Send()
		return res, fmt.Errorf("seed default admin: %w", err)
	}
	res.AdminID = u.ID

	log.Info().
		Str("event", "db_migration_success").
		Int64("admin_id", u.ID).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Send()

	return res, nil
}

// migrate runs every step in a single transaction so a failed step leaves
// no partial schema behind.
func migrate(ctx context.Context, db *sql.DB, log zerolog.Logger) (err error) {
	log.Info().Str("event", "db_migration_start").Str("status", "in_progress").Send()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
			log.Error().
				Err(err).
				Str("event", "db_migration_failed").
				Str("migration_step", step.Name).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Send()
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Debug().
			Str("event", "db_migration_step").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Send()
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}
