package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
	svc "github.com/littlenotes/encore/internal/services"
)

// GET /cancel?code=...
func CancelForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(r.URL.Query().Get("code"))

		data := map[string]any{
			"Title": "Cancel Registration",
			"Code":  code,
			"Flash": MakeFlash(r, "", ""),
		}
		if code != "" {
			var reg models.Registration
			if err := db.Conn().Preload("Children").Preload("Program").
				Where("code = ?", code).First(&reg).Error; err == nil {
				data["Reg"] = reg
			} else {
				data["Flash"] = &Flash{Kind: "error", Text: errText["code_not_found"]}
			}
		}
		render(t, w, "parents/cancel.tmpl", "parents/cancel.tmpl", data)
	}
}

// POST /cancel
func CancelSubmit(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		code := strings.TrimSpace(r.FormValue("code"))
		if code == "" {
			http.Redirect(w, r, "/cancel?error=code_not_found", http.StatusSeeOther)
			return
		}

		if err := svc.CancelByCode(code, strings.TrimSpace(r.FormValue("reason"))); err != nil {
			failRedirect(w, r, err, "/cancel")
			return
		}

		render(t, w, "parents/cancel_done.tmpl", "parents/cancel_done.tmpl", map[string]any{
			"Title": "Cancelled",
			"Code":  code,
		})
	}
}
