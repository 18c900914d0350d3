package handlers

import (
	"html/template"
	"net/http"

	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
)

type familyRow struct {
	ContactEmail string
	ContactName  string
	AccountID    *uint
	RegCount     int
	ChildCount   int
	OwingCents   int
}

// GET /admin/families: one row per contact email across all programs, with
// how much the family still owes. Waived registrations contribute nothing.
func AdminFamilies(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []familyRow
		if err := db.Conn().Table("registrations").
			Select(`contact_email, MAX(contact_name) as contact_name, MAX(account_id) as account_id,
				COUNT(*) as reg_count,
				SUM((SELECT COUNT(*) FROM children WHERE children.registration_id = registrations.id)) as child_count,
				SUM(CASE
					WHEN payment_status = ? THEN 0
					WHEN total_amount_cents - amount_paid_cents < 0 THEN 0
					ELSE total_amount_cents - amount_paid_cents
				END) as owing_cents`, models.PaymentWaived).
			Where("status NOT IN ?", []string{models.StatusCancelled, models.StatusArchived}).
			Group("contact_email").
			Order("contact_email asc").
			Scan(&rows).Error; err != nil {
			http.Error(w, "db error", 500)
			return
		}

		type viewRow struct {
			familyRow
			OwingStr string
		}
		vrows := make([]viewRow, 0, len(rows))
		for _, row := range rows {
			vrows = append(vrows, viewRow{familyRow: row, OwingStr: fmtCents(row.OwingCents)})
		}

		render(t, w, "admin/families.tmpl", "admin/families.tmpl", map[string]any{
			"Title": "Admin • Families",
			"Rows":  vrows,
			"Flash": MakeFlash(r, "", ""),
		})
	}
}
