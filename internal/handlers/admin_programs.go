package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
	svc "github.com/littlenotes/encore/internal/services"
)

// GET /admin/programs
func AdminPrograms(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var programs []models.Program
		if err := db.Conn().Preload("Sessions").Order("type asc, name asc").Find(&programs).Error; err != nil {
			http.Error(w, "db error", 500)
			return
		}
		svc.PurgeExpiredTokens()

		render(t, w, "admin/programs.tmpl", "admin/programs.tmpl", map[string]any{
			"Title":    "Admin • Programs",
			"Programs": programs,
			"Flash":    MakeFlash(r, "", ""),
		})
	}
}

// GET /admin/programs/new
func AdminNewProgram(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(t, w, "admin/programs_new.tmpl", "admin/programs_new.tmpl", map[string]any{
			"Title": "Admin • New Program",
		})
	}
}

// POST /admin/programs
func AdminCreateProgram(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ptype := r.FormValue("type")
	if ptype != models.ProgramWorkshop && ptype != models.ProgramCamp {
		http.Redirect(w, r, "/admin/programs/new?error=missing", http.StatusSeeOther)
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		http.Redirect(w, r, "/admin/programs/new?error=missing", http.StatusSeeOther)
		return
	}

	program := models.Program{
		Type:                 ptype,
		Name:                 name,
		BasePriceCents:       centsField(r, "base_price"),
		SiblingDiscountCents: centsField(r, "sibling_discount"),
		MaxDiscountCents:     centsField(r, "max_discount"),
		Active:               r.FormValue("active") != "off",
	}
	if err := db.Conn().Create(&program).Error; err != nil {
		http.Redirect(w, r, "/admin/programs/new?error=generic", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/programs?ok=saved", http.StatusSeeOther)
}

// GET /admin/programs/{id}/edit
func AdminEditProgramForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var program models.Program
		if err := db.Conn().Preload("Sessions").First(&program, chi.URLParam(r, "id")).Error; err != nil {
			http.NotFound(w, r)
			return
		}
		render(t, w, "admin/programs_edit.tmpl", "admin/programs_edit.tmpl", map[string]any{
			"Title":   "Admin • Edit Program",
			"Program": program,
			"Flash":   MakeFlash(r, "", ""),
		})
	}
}

// POST /admin/programs/{id}
func AdminUpdateProgram(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	var program models.Program
	if err := db.Conn().First(&program, id).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	program.Name = strings.TrimSpace(r.FormValue("name"))
	program.BasePriceCents = centsField(r, "base_price")
	program.SiblingDiscountCents = centsField(r, "sibling_discount")
	program.MaxDiscountCents = centsField(r, "max_discount")
	program.Active = r.FormValue("active") == "on"

	if err := db.Conn().Save(&program).Error; err != nil {
		http.Redirect(w, r, "/admin/programs/"+id+"/edit?error=generic", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/programs?ok=saved", http.StatusSeeOther)
}

// POST /admin/programs/{id}/sessions
func AdminCreateSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	var program models.Program
	if err := db.Conn().First(&program, id).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	date, err := time.ParseInLocation("2006-01-02T15:04", r.FormValue("date"), tzLocal)
	if err != nil {
		http.Redirect(w, r, "/admin/programs/"+id+"/edit?error=missing", http.StatusSeeOther)
		return
	}
	capacity, _ := strconv.Atoi(r.FormValue("capacity"))

	sess := models.Session{
		ProgramID: program.ID,
		Date:      date,
		Location:  strings.TrimSpace(r.FormValue("location")),
		Capacity:  capacity,
	}
	if err := db.Conn().Create(&sess).Error; err != nil {
		http.Redirect(w, r, "/admin/programs/"+id+"/edit?error=generic", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/programs/"+id+"/edit?ok=saved", http.StatusSeeOther)
}

// POST /admin/sessions/{id}/delete
//
// Refused while any active registration still references the session.
func AdminDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := svc.DeleteSession(sessionID); err != nil {
		failRedirect(w, r, err, "/admin/programs")
		return
	}
	http.Redirect(w, r, "/admin/programs?ok=deleted", http.StatusSeeOther)
}

// centsField reads a dollars form value ("400" or "400.50") as cents.
func centsField(r *http.Request, field string) int {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimPrefix(raw, "$"), 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f*100 + 0.5)
}
