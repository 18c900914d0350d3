package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
	svc "github.com/littlenotes/encore/internal/services"
)

// GET /account/profile: the signed-in parent's account and reusable child
// profiles. Creates the account row on first visit and adopts any
// registrations placed with the same email before the account existed.
func AccountProfile(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := parentEmail(r)
		if !ok {
			http.Redirect(w, r, "/my", http.StatusSeeOther)
			return
		}
		acct, err := svc.EnsureAccount(email, "", "")
		if err != nil {
			http.Error(w, "unable to load account", 500)
			return
		}
		var children []models.AccountChild
		_ = db.Conn().Where("account_id = ?", acct.ID).Order("name asc").Find(&children).Error

		render(t, w, "parents/account.tmpl", "parents/account.tmpl", map[string]any{
			"Title":    "My Account",
			"Account":  acct,
			"Children": children,
			"Flash":    MakeFlash(r, "", ""),
		})
	}
}

// POST /account/profile
func AccountProfileSubmit(w http.ResponseWriter, r *http.Request) {
	email, ok := parentEmail(r)
	if !ok {
		http.Redirect(w, r, "/my", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	acct, err := svc.EnsureAccount(email, "", "")
	if err != nil {
		http.Redirect(w, r, "/account/profile?error=generic", http.StatusSeeOther)
		return
	}
	acct.Name = strings.TrimSpace(r.FormValue("name"))
	acct.Phone = svc.NormPhone(r.FormValue("phone"))
	if err := db.Conn().Save(acct).Error; err != nil {
		http.Redirect(w, r, "/account/profile?error=generic", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/account/profile?ok=saved", http.StatusSeeOther)
}

// POST /account/children/new
func AccountNewChild(w http.ResponseWriter, r *http.Request) {
	email, ok := parentEmail(r)
	if !ok {
		http.Redirect(w, r, "/my", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	acct, err := svc.EnsureAccount(email, "", "")
	if err != nil {
		http.Redirect(w, r, "/account/profile?error=generic", http.StatusSeeOther)
		return
	}

	var birth time.Time
	if raw := strings.TrimSpace(r.FormValue("birth_date")); raw != "" {
		birth, _ = time.ParseInLocation("2006-01-02", raw, tzLocal)
	}
	if _, err := svc.AddAccountChild(acct.ID, r.FormValue("name"), r.FormValue("school"), birth); err != nil {
		failRedirect(w, r, err, "/account/profile")
		return
	}
	http.Redirect(w, r, "/account/profile?ok=child_saved", http.StatusSeeOther)
}

// POST /account/children/delete
func AccountDeleteChild(w http.ResponseWriter, r *http.Request) {
	email, ok := parentEmail(r)
	if !ok {
		http.Redirect(w, r, "/my", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	id, err := strconv.Atoi(r.FormValue("id"))
	if err != nil {
		http.Redirect(w, r, "/account/profile?error=generic", http.StatusSeeOther)
		return
	}
	acct, err := svc.EnsureAccount(email, "", "")
	if err != nil {
		http.Redirect(w, r, "/account/profile?error=generic", http.StatusSeeOther)
		return
	}
	// Scoped delete: only this account's profiles. Registration children are
	// point-in-time copies and are untouched.
	if err := db.Conn().Where("account_id = ?", acct.ID).Delete(&models.AccountChild{}, id).Error; err != nil {
		http.Redirect(w, r, "/account/profile?error=generic", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/account/profile?ok=child_removed", http.StatusSeeOther)
}
