package db

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/littlenotes/encore/internal/models"
)

var conn *gorm.DB

func Init(path string) error {
	var err error
	conn, err = gorm.Open(sqlite.Open(path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"), &gorm.Config{})
	if err != nil {
		return err
	}

	// SQLite works best with a single writer; cap the pool accordingly.
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := conn.AutoMigrate(
		&models.Program{},
		&models.Session{},
		&models.Registration{},
		&models.RegistrationSession{},
		&models.Child{},
		&models.Account{},
		&models.AccountChild{},
		&models.AuthorizedPickup{},
		&models.AttendanceRecord{},
		&models.MagicLinkToken{},
	); err != nil {
		log.Fatalf("auto-migrate failed: %v", err)
	}

	// Composite indexes that GORM doesn't auto-create from struct tags.
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_reg_program_status ON registrations(program_id, status)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_reg_email_status   ON registrations(contact_email, status)")
	conn.Exec("CREATE INDEX IF NOT EXISTS idx_child_reg_position ON children(registration_id, position)")

	log.Println("database ready (sqlite)")
	return nil
}

func Conn() *gorm.DB {
	return conn
}

// SetConn swaps the package connection; tests use it with an in-memory DB.
func SetConn(c *gorm.DB) {
	conn = c
}
