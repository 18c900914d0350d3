package handlers

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/littlenotes/encore/internal/core"
	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
	"github.com/littlenotes/encore/internal/pricing"
	svc "github.com/littlenotes/encore/internal/services"
)

var errMissingName = core.NewValidationError("name is required",
	core.FieldError{Field: "name", Error: "name is required"})

func orderByPosition(tx *gorm.DB) *gorm.DB {
	return tx.Order("position asc, id asc")
}

type rosterRow struct {
	ID           uint
	Code         string
	Status       string
	Payment      string
	ProgramName  string
	ProgramType  string
	ContactName  string
	ContactEmail string
	ChildCount   int
	TotalCents   int
	PaidCents    int
	CreatedAt    time.Time
}

// GET /admin/roster
func AdminRoster(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := rosterRows(r)
		if err != nil {
			http.Error(w, "db error", 500)
			return
		}

		type viewRow struct {
			rosterRow
			TotalStr string
			OwingStr string
			DateStr  string
		}
		vrows := make([]viewRow, 0, len(rows))
		for _, row := range rows {
			vrows = append(vrows, viewRow{
				rosterRow: row,
				TotalStr:  fmtCents(row.TotalCents),
				OwingStr: fmtCents(pricing.OutstandingCents(models.Registration{
					TotalAmountCents: row.TotalCents,
					AmountPaidCents:  row.PaidCents,
					PaymentStatus:    row.Payment,
				})),
				DateStr: fmtDate(row.CreatedAt),
			})
		}

		render(t, w, "admin/roster.tmpl", "admin/roster.tmpl", map[string]any{
			"Title":    "Admin • Roster",
			"Rows":     vrows,
			"Status":   r.URL.Query().Get("status"),
			"Query":    r.URL.Query().Get("q"),
			"Archived": r.URL.Query().Get("status") == models.StatusArchived,
			"Flash":    MakeFlash(r, "", ""),
		})
	}
}

// GET /admin/roster.csv
func AdminRosterCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := rosterRows(r)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("roster-%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"code", "status", "payment", "program", "type", "contact", "email", "children", "total", "paid", "created"})
	for _, row := range rows {
		_ = cw.Write([]string{
			row.Code, row.Status, row.Payment, row.ProgramName, row.ProgramType,
			row.ContactName, row.ContactEmail,
			strconv.Itoa(row.ChildCount),
			fmtCents(row.TotalCents), fmtCents(row.PaidCents),
			row.CreatedAt.Format("2006-01-02"),
		})
	}
	cw.Flush()
}

func rosterRows(r *http.Request) ([]rosterRow, error) {
	q := db.Conn().Table("registrations").
		Select(`registrations.id, registrations.code, registrations.status,
				registrations.payment_status as payment,
				registrations.contact_name, registrations.contact_email,
				registrations.total_amount_cents as total_cents,
				registrations.amount_paid_cents as paid_cents,
				registrations.created_at,
				registrations.program_type,
				programs.name as program_name,
				(SELECT COUNT(*) FROM children WHERE children.registration_id = registrations.id) as child_count`).
		Joins("JOIN programs ON programs.id = registrations.program_id")

	// Archived rows stay out of the default view; ask for them explicitly.
	status := r.URL.Query().Get("status")
	if status == "" {
		q = q.Where("registrations.status <> ?", models.StatusArchived)
	} else {
		q = q.Where("registrations.status = ?", status)
	}

	if search := strings.TrimSpace(r.URL.Query().Get("q")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where(`LOWER(registrations.code) LIKE ? OR
			LOWER(registrations.contact_name) LIKE ? OR
			LOWER(registrations.contact_email) LIKE ? OR
			LOWER(programs.name) LIKE ?`, like, like, like, like)
	}

	var rows []rosterRow
	err := q.Order("registrations.created_at DESC, registrations.id DESC").Scan(&rows).Error
	return rows, err
}

// GET /admin/registrations/lookup?code=... QR scans land here.
func AdminRegLookup(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	var reg models.Registration
	if err := db.Conn().Where("code = ?", code).First(&reg).Error; err != nil {
		http.Redirect(w, r, "/admin/roster?error=code_not_found", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/admin/registrations/%d", reg.ID), http.StatusSeeOther)
}

// GET /admin/registrations/{id}
func AdminRegShow(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg models.Registration
		if err := db.Conn().
			Preload("Program").Preload("Children", orderByPosition).
			Preload("Pickups").Preload("Sessions").
			First(&reg, chi.URLParam(r, "id")).Error; err != nil {
			http.NotFound(w, r)
			return
		}

		render(t, w, "admin/registration_show.tmpl", "admin/registration_show.tmpl", map[string]any{
			"Title":    "Admin • " + reg.Code,
			"Reg":      reg,
			"TotalStr": fmtCents(reg.TotalAmountCents),
			"PaidStr":  fmtCents(reg.AmountPaidCents),
			"OwingStr": fmtCents(pricing.OutstandingCents(reg)),
			"Flash":    MakeFlash(r, "", ""),
		})
	}
}

// POST /admin/registrations/{id}/status
func AdminRegSetStatus(w http.ResponseWriter, r *http.Request) {
	regAction(w, r, func(id uint) error {
		return svc.SetStatus(id, r.FormValue("status"), r.FormValue("reason"))
	}, "saved")
}

// POST /admin/registrations/{id}/payment
func AdminRegSetPayment(w http.ResponseWriter, r *http.Request) {
	regAction(w, r, func(id uint) error {
		return svc.SetPaymentStatus(id, r.FormValue("payment_status"), centsField(r, "amount_paid"))
	}, "saved")
}

// POST /admin/registrations/{id}/archive
func AdminRegArchive(w http.ResponseWriter, r *http.Request) {
	regAction(w, r, func(id uint) error {
		return svc.Archive(id, adminActor(r), r.FormValue("reason"))
	}, "archived")
}

// POST /admin/registrations/{id}/restore
func AdminRegRestore(w http.ResponseWriter, r *http.Request) {
	regAction(w, r, func(id uint) error {
		return svc.Restore(id, r.FormValue("status"))
	}, "restored")
}

// POST /admin/registrations/{id}/delete
func AdminRegDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if err := svc.Delete(uint(id)); err != nil {
		failRedirect(w, r, err, "/admin/roster")
		return
	}
	http.Redirect(w, r, "/admin/roster?ok=deleted", http.StatusSeeOther)
}

// POST /admin/registrations/{id}/children: add a child
func AdminRegAddChild(w http.ResponseWriter, r *http.Request) {
	regAction(w, r, func(id uint) error {
		age, _ := strconv.Atoi(r.FormValue("age"))
		_, err := svc.AddChild(id, svc.ChildInput{
			Name:                r.FormValue("name"),
			Age:                 age,
			School:              r.FormValue("school"),
			Allergies:           r.FormValue("allergies"),
			DietaryRestrictions: r.FormValue("dietary"),
			MedicalConditions:   r.FormValue("medical"),
			SpecialNeeds:        r.FormValue("special_needs"),
			TShirtSize:          r.FormValue("tshirt"),
		})
		return err
	}, "child_saved")
}

// POST /admin/registrations/{id}/children/{childID}/delete
func AdminRegRemoveChild(w http.ResponseWriter, r *http.Request) {
	childID, err := strconv.Atoi(chi.URLParam(r, "childID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	page := "/admin/registrations/" + chi.URLParam(r, "id")
	if err := svc.RemoveChild(uint(childID)); err != nil {
		failRedirect(w, r, err, page)
		return
	}
	http.Redirect(w, r, page+"?ok=child_removed", http.StatusSeeOther)
}

// POST /admin/registrations/{id}/pickups: add a pickup person
func AdminRegAddPickup(w http.ResponseWriter, r *http.Request) {
	regAction(w, r, func(id uint) error {
		name := strings.TrimSpace(r.FormValue("name"))
		if name == "" {
			return errMissingName
		}
		pickup := models.AuthorizedPickup{
			RegistrationID: id,
			Name:           name,
			Phone:          svc.NormPhone(r.FormValue("phone")),
			Relationship:   strings.TrimSpace(r.FormValue("relationship")),
		}
		return db.Conn().Create(&pickup).Error
	}, "pickup_saved")
}

// POST /admin/registrations/{id}/pickups/{pickupID}/delete
func AdminRegRemovePickup(w http.ResponseWriter, r *http.Request) {
	pickupID, err := strconv.Atoi(chi.URLParam(r, "pickupID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	page := "/admin/registrations/" + chi.URLParam(r, "id")
	if err := db.Conn().Delete(&models.AuthorizedPickup{}, pickupID).Error; err != nil {
		http.Redirect(w, r, page+"?error=generic", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, page+"?ok=pickup_removed", http.StatusSeeOther)
}

func regAction(w http.ResponseWriter, r *http.Request, op func(id uint) error, okKey string) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	page := "/admin/registrations/" + chi.URLParam(r, "id")
	if err := op(uint(id)); err != nil {
		failRedirect(w, r, err, page)
		return
	}
	http.Redirect(w, r, page+"?ok="+okKey, http.StatusSeeOther)
}
