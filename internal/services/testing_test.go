package services

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
)

// openTestDB installs an isolated in-file SQLite database in a temp directory
// as the package connection.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(
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
		t.Fatalf("auto-migrate: %v", err)
	}
	db.SetConn(gdb)
	return gdb
}

func seedCamp(t *testing.T, gdb *gorm.DB) models.Program {
	t.Helper()
	p := models.Program{
		Type:                 models.ProgramCamp,
		Name:                 "Summer Camp",
		BasePriceCents:       40000,
		SiblingDiscountCents: 1000,
		MaxDiscountCents:     3000,
		Active:               true,
	}
	if err := gdb.Create(&p).Error; err != nil {
		t.Fatalf("seed camp: %v", err)
	}
	return p
}

func seedWorkshop(t *testing.T, gdb *gorm.DB, sessions int, capacity int) (models.Program, []models.Session) {
	t.Helper()
	p := models.Program{
		Type:                 models.ProgramWorkshop,
		Name:                 "Strings Workshop",
		BasePriceCents:       7500,
		SiblingDiscountCents: 1000,
		MaxDiscountCents:     3000,
		Active:               true,
	}
	if err := gdb.Create(&p).Error; err != nil {
		t.Fatalf("seed workshop: %v", err)
	}
	out := make([]models.Session, sessions)
	for i := range out {
		out[i] = models.Session{ProgramID: p.ID, Location: "Main Hall", Capacity: capacity}
		if err := gdb.Create(&out[i]).Error; err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	return p, out
}

func mustCreateRegistration(t *testing.T, in CreateRegistrationInput) *models.Registration {
	t.Helper()
	reg, err := CreateRegistration(in)
	if err != nil {
		t.Fatalf("CreateRegistration: %v", err)
	}
	return reg
}

func dbFind(rec *models.AttendanceRecord, sessionID, childID uint) error {
	return db.Conn().Where("session_id = ? AND child_id = ?", sessionID, childID).First(rec).Error
}

func dbConnFirst(child *models.Child, id uint) error {
	return db.Conn().First(child, id).Error
}

func campInput(programID uint, childNames ...string) CreateRegistrationInput {
	in := CreateRegistrationInput{
		ProgramID:      programID,
		ContactName:    "Dana Parent",
		ContactEmail:   "dana@example.com",
		TermsAccepted:  true,
		WaiverAccepted: true,
	}
	for _, n := range childNames {
		in.Children = append(in.Children, ChildInput{Name: n, Age: 10})
	}
	return in
}
