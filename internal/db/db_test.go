package db_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/littlenotes/encore/internal/db"
)

// TestWALMode verifies that the DSN parameters in db.go enable WAL journal
// mode. WAL is the key SQLite setting for concurrent reads + single-writer
// throughput.
func TestWALMode(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "wal_test.db") +
		"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	var mode string
	gdb.Raw("PRAGMA journal_mode").Scan(&mode)
	if mode != "wal" {
		t.Errorf("expected journal_mode=wal, got %q", mode)
	}
}

// TestInit_CreatesIndexes verifies that Init() creates the composite indexes
// GORM does not auto-create from struct tags.
func TestInit_CreatesIndexes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encore_test.db")
	if err := db.Init(path); err != nil {
		t.Fatalf("Init: %v", err)
	}

	sqlDB, err := db.Conn().DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}

	regIdx := indexNames(t, sqlDB, "registrations")
	for _, want := range []string{"idx_reg_program_status", "idx_reg_email_status"} {
		if !regIdx[want] {
			t.Errorf("index %q missing from registrations table; found: %v", want, regIdx)
		}
	}
	childIdx := indexNames(t, sqlDB, "children")
	if !childIdx["idx_child_reg_position"] {
		t.Errorf("index idx_child_reg_position missing from children table; found: %v", childIdx)
	}
}

func indexNames(t *testing.T, sqlDB *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := sqlDB.Query("PRAGMA index_list(" + table + ")")
	if err != nil {
		t.Fatalf("PRAGMA index_list: %v", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var seq int
		var name string
		var unique bool
		var origin, partial string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out[name] = true
	}
	return out
}
