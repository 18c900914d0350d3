package handlers

import (
	"html/template"
	"net/http"
	"strings"
	"time"
)

// GET /admin/login
func AdminLoginForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(t, w, "admin/login.tmpl", "admin/login.tmpl", map[string]any{
			"Title": "Admin • Login",
			"Next":  r.URL.Query().Get("next"),
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

// POST /admin/login
func AdminLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	pw := r.FormValue("password")
	name := strings.TrimSpace(r.FormValue("name"))
	next := r.FormValue("next")
	if pw != adminPassword() {
		http.Error(w, "invalid password", http.StatusUnauthorized)
		return
	}
	if name == "" {
		name = "admin"
	}
	id := adminSessions.create(name)
	setSessionCookie(w, adminCookieName, id, 24*time.Hour)
	if next == "" {
		next = "/admin/programs"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// POST /admin/logout
func AdminLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(adminCookieName); err == nil {
		adminSessions.drop(c.Value)
	}
	clearSessionCookie(w, adminCookieName)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
