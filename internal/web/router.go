package web

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/littlenotes/encore/internal/config"
	"github.com/littlenotes/encore/internal/handlers"
)

func Router(cfg *config.Config) http.Handler {
	handlers.Configure(cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	tmpl := mustParseTemplates(cfg.TemplatesDir)

	// Public pages
	r.Get("/", handlers.Home(tmpl))
	r.Get("/healthz", handlers.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Registration forms (camp and workshop share the flow)
	r.Get("/register", handlers.RegisterIndex(tmpl))
	r.Get("/register/{programID}", handlers.RegisterForm(tmpl))
	r.Post("/register/{programID}", handlers.RegisterSubmit(tmpl))

	// Parent self-service: cancel + magic-link dashboard
	r.Get("/cancel", handlers.CancelForm(tmpl))
	r.Post("/cancel", handlers.CancelSubmit(tmpl))
	r.Get("/my", handlers.MyForm(tmpl))
	r.Post("/my/link", handlers.MyRequestLink)
	r.Get("/my/logout", handlers.MyLogout)
	r.With(handlers.RequireParent).Get("/my/list", handlers.MyList(tmpl))

	// Parent account
	r.With(handlers.RequireParent).Get("/account/profile", handlers.AccountProfile(tmpl))
	r.With(handlers.RequireParent).Post("/account/profile", handlers.AccountProfileSubmit)
	r.With(handlers.RequireParent).Post("/account/children/new", handlers.AccountNewChild)
	r.With(handlers.RequireParent).Post("/account/children/delete", handlers.AccountDeleteChild)

	// QR ticket image
	r.Get("/qr/{code}.png", handlers.QR)

	// Static assets
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// --- Admin routes (with login + guard) ---
	r.Route("/admin", func(ar chi.Router) {
		// Auth endpoints (public)
		ar.Get("/login", handlers.AdminLoginForm(tmpl))
		ar.Post("/login", handlers.AdminLoginSubmit)
		ar.Post("/logout", handlers.AdminLogout)

		// Guarded admin pages
		ar.Group(func(ag chi.Router) {
			ag.Use(handlers.RequireAdmin)

			// Programs & sessions
			ag.Get("/programs", handlers.AdminPrograms(tmpl))
			ag.Get("/programs/new", handlers.AdminNewProgram(tmpl))
			ag.Post("/programs", handlers.AdminCreateProgram)
			ag.Get("/programs/{id}/edit", handlers.AdminEditProgramForm(tmpl))
			ag.Post("/programs/{id}", handlers.AdminUpdateProgram)
			ag.Post("/programs/{id}/sessions", handlers.AdminCreateSession)
			ag.Post("/sessions/{id}/delete", handlers.AdminDeleteSession)

			// Attendance
			ag.Get("/sessions/{id}/attendance", handlers.AdminAttendance(tmpl))
			ag.Post("/sessions/{id}/attendance/{childID}/checkin", handlers.AdminCheckIn)
			ag.Post("/sessions/{id}/attendance/{childID}/undo", handlers.AdminUndoCheckIn)
			ag.Post("/sessions/{id}/attendance/{childID}/noshow", handlers.AdminMarkNoShow)
			ag.Post("/sessions/{id}/attendance/{childID}/reset", handlers.AdminResetAttendance)

			// Roster & registrations
			ag.Get("/roster", handlers.AdminRoster(tmpl))
			ag.Get("/roster.csv", handlers.AdminRosterCSV)
			ag.Get("/registrations/lookup", handlers.AdminRegLookup)
			ag.Get("/registrations/{id}", handlers.AdminRegShow(tmpl))
			ag.Post("/registrations/{id}/status", handlers.AdminRegSetStatus)
			ag.Post("/registrations/{id}/payment", handlers.AdminRegSetPayment)
			ag.Post("/registrations/{id}/archive", handlers.AdminRegArchive)
			ag.Post("/registrations/{id}/restore", handlers.AdminRegRestore)
			ag.Post("/registrations/{id}/delete", handlers.AdminRegDelete)
			ag.Post("/registrations/{id}/children", handlers.AdminRegAddChild)
			ag.Post("/registrations/{id}/children/{childID}/delete", handlers.AdminRegRemoveChild)
			ag.Post("/registrations/{id}/pickups", handlers.AdminRegAddPickup)
			ag.Post("/registrations/{id}/pickups/{pickupID}/delete", handlers.AdminRegRemovePickup)

			// Families report
			ag.Get("/families", handlers.AdminFamilies(tmpl))
		})
	})

	return r
}

func mustParseTemplates(baseDir string) *template.Template {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*3600)
	}

	funcs := template.FuncMap{
		"year":        func() string { return time.Now().Format("2006") },
		"fmtDate":     func(t time.Time) string { return t.In(loc).Format("Mon, 02 Jan 2006") },
		"fmtDateTime": func(t time.Time) string { return t.In(loc).Format("Mon, 02 Jan 2006 15:04") },
		"fmtISODate":  func(t time.Time) string { return t.In(loc).Format("2006-01-02") },
		"fmtCents": func(cents int) string {
			sign := ""
			if cents < 0 {
				sign = "-"
				cents = -cents
			}
			return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
		},
	}

	p := template.New("").Funcs(funcs)
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "layouts", "*.tmpl")))
	p = template.Must(p.ParseGlob(filepath.Join(baseDir, "partials", "*.tmpl")))
	return p
}
