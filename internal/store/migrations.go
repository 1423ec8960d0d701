package store

import (
	"database/sql"
	"fmt"

	"fibcalc/internal/logging"
)

// Migration adds a column to an existing table.
type Migration struct {
	Table  string
	Column string
	Def    string
}

// pendingMigrations handles databases created before a column existed.
var pendingMigrations = []Migration{
	// Evaluator description on runs (added with checked/big modes)
	{"runs", "evaluator", "TEXT DEFAULT ''"},
	// Cache hit accounting on runs
	{"runs", "cache_hits", "INTEGER DEFAULT 0"},
}

// RunMigrations applies schema migrations for existing databases.
func RunMigrations(db *sql.DB) error {
	logging.Store("Running schema migrations (%d pending)", len(pendingMigrations))

	applied, skipped := 0, 0
	for _, m := range pendingMigrations {
		if !tableExists(db, m.Table) {
			logging.StoreDebug("Table missing, skipping migration: %s.%s", m.Table, m.Column)
			skipped++
			continue
		}
		if columnExists(db, m.Table, m.Column) {
			skipped++
			continue
		}

		query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.Table, m.Column, m.Def)
		logging.StoreDebug("Executing migration: %s", query)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migration %s.%s failed: %w", m.Table, m.Column, err)
		}
		logging.Store("Migration applied: added %s.%s", m.Table, m.Column)
		applied++
	}

	logging.Store("Schema migrations complete: applied=%d, skipped=%d", applied, skipped)
	return nil
}

// columnExists checks if a column exists in a table using PRAGMA table_info.
func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		logging.StoreDebug("PRAGMA table_info(%s) failed: %v", table, err)
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}

// tableExists checks if a table exists in the database.
func tableExists(db *sql.DB, table string) bool {
	var count int
	query := "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?"
	if err := db.QueryRow(query, table).Scan(&count); err != nil {
		logging.StoreDebug("Table existence check failed for %s: %v", table, err)
		return false
	}
	return count > 0
}
