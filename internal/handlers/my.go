package handlers

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
	"github.com/littlenotes/encore/internal/pricing"
	svc "github.com/littlenotes/encore/internal/services"
)

type myRow struct {
	Code        string
	Status      string
	ProgramName string
	ProgramType string
	Children    []string
	TotalStr    string
	OwingStr    string
}

// GET /my: email gate, or token redemption when ?token= is present.
//
// A magic link is consumed by the act of loading the dashboard: validation
// marks the token used, so reloading the same link fails and the parent
// requests a fresh one. The session cookie set on success keeps the dashboard
// browsable after that single redemption.
func MyForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
			email, valid := svc.ValidateMagicLink(token)
			if !valid {
				http.Redirect(w, r, "/my?error=invalid_token", http.StatusSeeOther)
				return
			}
			id := parentSessions.create(email)
			setSessionCookie(w, parentCookieName, id, 2*time.Hour)
			http.Redirect(w, r, "/my/list", http.StatusSeeOther)
			return
		}

		// Already signed in? Skip the gate.
		if _, ok := parentEmail(r); ok {
			http.Redirect(w, r, "/my/list", http.StatusSeeOther)
			return
		}

		render(t, w, "parents/my_email.tmpl", "parents/my_email.tmpl", map[string]any{
			"Title": "My Registrations",
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

// POST /my/link: request a magic link. The response reads the same whether
// or not the email has registrations.
func MyRequestLink(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if err := svc.IssueMagicLink(r.FormValue("email"), baseURL()); err != nil {
		failRedirect(w, r, err, "/my")
		return
	}
	http.Redirect(w, r, "/my?ok=link_sent", http.StatusSeeOther)
}

// GET /my/list: the parent dashboard (session required).
func MyList(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := parentEmail(r)
		if !ok {
			http.Redirect(w, r, "/my", http.StatusSeeOther)
			return
		}

		var regs []models.Registration
		if err := db.Conn().Preload("Children").Preload("Program").
			Where("contact_email = ? AND status <> ?", email, models.StatusArchived).
			Order("created_at desc").Find(&regs).Error; err != nil {
			http.Error(w, "unable to load registrations", 500)
			return
		}

		rows := make([]myRow, 0, len(regs))
		for _, reg := range regs {
			row := myRow{
				Code:        reg.Code,
				Status:      reg.Status,
				ProgramName: reg.Program.Name,
				ProgramType: reg.ProgramType,
				TotalStr:    fmtCents(reg.TotalAmountCents),
				OwingStr:    fmtCents(pricing.OutstandingCents(reg)),
			}
			for _, c := range reg.Children {
				row.Children = append(row.Children, c.Name)
			}
			rows = append(rows, row)
		}

		render(t, w, "parents/my_list.tmpl", "parents/my_list.tmpl", map[string]any{
			"Title": "My Registrations",
			"Email": email,
			"Rows":  rows,
			"Flash": MakeFlash(r, "", ""),
		})
	}
}

// GET /my/logout
func MyLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(parentCookieName); err == nil {
		parentSessions.drop(c.Value)
	}
	clearSessionCookie(w, parentCookieName)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
