package database

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS report_snapshots (
		id VARCHAR(64) PRIMARY KEY,
		report VARCHAR(64) NOT NULL,
		data_fingerprint VARCHAR(64) NOT NULL,
		payload TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_report_snapshots_report_created_at
		ON report_snapshots (report, created_at)`,
}

// Migrate cria as tabelas usadas pelos snapshots; pode ser executado várias vezes
func Migrate(ctx context.Context, conn *Connection) error {
	return conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for i, stmt := range migrations {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("erro na migração %d: %w", i+1, err)
			}
		}
		return nil
	})
}
