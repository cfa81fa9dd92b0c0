package database

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// Migrate creates or alters the tables for the given models. It is safe to
// run on every start and is called once during process bootstrap.
func Migrate(ctx context.Context, db *gorm.DB, log *slog.Logger, tables ...interface{}) error {
	for _, table := range tables {
		if err := db.WithContext(ctx).AutoMigrate(table); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", table, err)
		}
		log.InfoContext(ctx, "schema ready", slog.String("model", fmt.Sprintf("%T", table)))
	}
	return nil
}
