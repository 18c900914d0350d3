package handlers

import (
	"html/template"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/littlenotes/encore/internal/config"
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
		&models.Registration{},
		&models.Child{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	db.SetConn(gdb)
	return gdb
}

func baseTemplates(t *testing.T) *template.Template {
	t.Helper()
	Configure(&config.Config{TemplatesDir: "../../templates"})
	funcs := template.FuncMap{
		"year":        func() string { return "2026" },
		"fmtCents":    fmtCents,
		"fmtDate":     fmtDate,
		"fmtDateTime": fmtDateTime,
	}
	p := template.New("").Funcs(funcs)
	p = template.Must(p.ParseGlob("../../templates/layouts/*.tmpl"))
	p = template.Must(p.ParseGlob("../../templates/partials/*.tmpl"))
	return p
}

// TestFamiliesAggregation verifies the single GROUP BY query behind the
// families report: owing sums per contact email, waived registrations
// contribute nothing, overpayments never go below zero, and cancelled or
// archived registrations are excluded entirely.
func TestFamiliesAggregation(t *testing.T) {
	gdb := openTestDB(t)

	p := models.Program{Type: models.ProgramCamp, Name: "Camp", BasePriceCents: 40000, Active: true}
	gdb.Create(&p)

	regs := []models.Registration{
		// dana owes 30000 across two registrations (40000-20000 and 10000-0).
		{ProgramID: p.ID, ProgramType: p.Type, Code: "REG-AAAA0001", ContactName: "Dana", ContactEmail: "dana@example.com",
			Status: models.StatusConfirmed, PaymentStatus: models.PaymentPartial, TotalAmountCents: 40000, AmountPaidCents: 20000},
		{ProgramID: p.ID, ProgramType: p.Type, Code: "REG-AAAA0002", ContactName: "Dana", ContactEmail: "dana@example.com",
			Status: models.StatusPending, PaymentStatus: models.PaymentUnpaid, TotalAmountCents: 10000},
		// waived: owes nothing regardless of amounts.
		{ProgramID: p.ID, ProgramType: p.Type, Code: "REG-AAAA0003", ContactName: "Eli", ContactEmail: "eli@example.com",
			Status: models.StatusConfirmed, PaymentStatus: models.PaymentWaived, TotalAmountCents: 40000},
		// overpaid: clamps to zero, never negative.
		{ProgramID: p.ID, ProgramType: p.Type, Code: "REG-AAAA0004", ContactName: "Fay", ContactEmail: "fay@example.com",
			Status: models.StatusConfirmed, PaymentStatus: models.PaymentPaid, TotalAmountCents: 40000, AmountPaidCents: 45000},
		// cancelled and archived rows are invisible to the report.
		{ProgramID: p.ID, ProgramType: p.Type, Code: "REG-AAAA0005", ContactName: "Gus", ContactEmail: "gus@example.com",
			Status: models.StatusCancelled, PaymentStatus: models.PaymentUnpaid, TotalAmountCents: 40000},
	}
	for i := range regs {
		if err := gdb.Create(&regs[i]).Error; err != nil {
			t.Fatalf("seed registration: %v", err)
		}
	}

	tmpl := baseTemplates(t)
	req := httptest.NewRequest("GET", "/admin/families", nil)
	rec := httptest.NewRecorder()
	AdminFamilies(tmpl).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()

	if !strings.Contains(body, "dana@example.com") || !strings.Contains(body, "$300.00") {
		t.Errorf("dana row missing or owing wrong:\n%s", body)
	}
	if !strings.Contains(body, "eli@example.com") {
		t.Error("waived family missing from report")
	}
	if strings.Contains(body, "-$") {
		t.Error("report shows a negative owing amount")
	}
	if strings.Contains(body, "gus@example.com") {
		t.Error("cancelled registration leaked into the report")
	}
}
