package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds the query indexes that are not expressed in model tags
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Goal listing is always per user, newest first
		{"goals", "idx_goals_user_created", "user_id, created_at"},

		// Membership lookups by user (the primary key leads with group_id)
		{"group_users", "idx_group_users_user_id", "user_id"},

		// Unread notification counts
		{"notifications", "idx_notifications_user_read", "user_id, \"read\""},

		// Reset tokens are invalidated per user
		{"password_reset_tokens", "idx_password_reset_tokens_user_used", "user_id, used"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			slog.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		columns := idx.columns
		if db.Dialector.Name() == "mysql" {
			columns = mysqlQuote(columns)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		slog.Info("created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}

// mysqlQuote swaps ANSI identifier quotes for backticks.
func mysqlQuote(columns string) string {
	out := []byte(columns)
	for i, c := range out {
		if c == '"' {
			out[i] = '`'
		}
	}
	return string(out)
}
