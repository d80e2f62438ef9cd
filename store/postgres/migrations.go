package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Facet store (PostgreSQL).
var Migrations = migrate.NewGroup("facet")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_users",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS facet_users (
    tenant_id       TEXT NOT NULL,
    id              TEXT NOT NULL,
    name            TEXT NOT NULL,
    email           TEXT NOT NULL DEFAULT '',
    role            TEXT NOT NULL DEFAULT '',
    description     TEXT NOT NULL DEFAULT '',
    scopes          JSONB NOT NULL DEFAULT '[]',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    PRIMARY KEY (tenant_id, id)
);

CREATE INDEX IF NOT EXISTS idx_facet_users_scopes ON facet_users USING GIN (scopes);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS facet_users`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tags",
			Version: "20250101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS facet_tags (
    tenant_id       TEXT NOT NULL,
    key             TEXT NOT NULL,
    label           TEXT NOT NULL,
    tag_values      JSONB NOT NULL DEFAULT '[]',
    position        INTEGER NOT NULL DEFAULT 0,

    PRIMARY KEY (tenant_id, key)
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS facet_tags`)
				return err
			},
		},
	)
}
