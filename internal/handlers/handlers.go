package handlers

import (
	"html/template"
	"net/http"

	"github.com/littlenotes/encore/internal/config"
)

var cfg *config.Config

// Configure hands the loaded config to the handler package. Called once from
// main before the router is built.
func Configure(c *config.Config) {
	cfg = c
}

func baseURL() string {
	if cfg != nil && cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return "http://127.0.0.1:8080"
}

func adminPassword() string {
	if cfg != nil && cfg.AdminPassword != "" {
		return cfg.AdminPassword
	}
	return "admin123" // change in production: export ADMIN_PASSWORD=...
}

func templatesDir() string {
	if cfg != nil && cfg.TemplatesDir != "" {
		return cfg.TemplatesDir
	}
	return "templates"
}

// render clones the base template set, parses one page file on top, and
// executes it.
func render(t *template.Template, w http.ResponseWriter, page, name string, data any) {
	view, err := t.Clone()
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if _, err := view.ParseFiles(templatesDir() + "/pages/" + page); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if err := view.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	ref := r.Header.Get("Referer")
	if ref == "" {
		ref = fallback
	}
	http.Redirect(w, r, ref, http.StatusSeeOther)
}

// GET /healthz
func Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
