package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Facet store (SQLite).
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
    scopes          TEXT NOT NULL DEFAULT '[]',
    created_at      TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at      TEXT NOT NULL DEFAULT (datetime('now')),

    PRIMARY KEY (tenant_id, id)
);
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
    tag_values      TEXT NOT NULL DEFAULT '[]',
    position        INTEGER NOT NULL DEFAULT 0,

    PRIMARY KEY (tenant_id, key)
);

CREATE INDEX IF NOT EXISTS idx_facet_tags_position ON facet_tags (tenant_id, position);
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
