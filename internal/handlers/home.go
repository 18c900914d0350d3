package handlers

import (
	"html/template"
	"net/http"

	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
)

func Home(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var programs []models.Program
		_ = db.Conn().Where("active = ?", true).Order("type asc, name asc").Find(&programs).Error

		render(t, w, "home.tmpl", "home.tmpl", map[string]any{
			"Title":    "Little Notes Music",
			"Programs": programs,
			"Flash":    MakeFlash(r, "", ""),
		})
	}
}
