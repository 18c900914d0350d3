package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/littlenotes/encore/internal/core"
	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
	svc "github.com/littlenotes/encore/internal/services"
)

// GET /register: pick a program
func RegisterIndex(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var programs []models.Program
		_ = db.Conn().Where("active = ?", true).Order("type asc, name asc").Find(&programs).Error

		render(t, w, "parents/register_index.tmpl", "parents/register_index.tmpl", map[string]any{
			"Title":    "Register",
			"Programs": programs,
			"Flash":    MakeFlash(r, "", ""),
		})
	}
}

// GET /register/{programID}
func RegisterForm(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var program models.Program
		if err := db.Conn().Preload("Sessions").First(&program, chi.URLParam(r, "programID")).Error; err != nil {
			http.Redirect(w, r, "/register?error=program_missing", http.StatusSeeOther)
			return
		}

		sessions := make([]map[string]any, 0, len(program.Sessions))
		for _, s := range program.Sessions {
			sessions = append(sessions, map[string]any{
				"ID":       s.ID,
				"DateStr":  fmtDateTime(s.Date),
				"Location": s.Location,
			})
		}

		render(t, w, "parents/register_form.tmpl", "parents/register_form.tmpl", map[string]any{
			"Title":    "Register • " + program.Name,
			"Program":  program,
			"IsCamp":   program.Type == models.ProgramCamp,
			"Sessions": sessions,
			"Flash":    MakeFlash(r, "", ""),
		})
	}
}

// POST /register/{programID}
func RegisterSubmit(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		programID, err := strconv.Atoi(chi.URLParam(r, "programID"))
		if err != nil {
			http.Redirect(w, r, "/register?error=program_missing", http.StatusSeeOther)
			return
		}

		in := svc.CreateRegistrationInput{
			ProgramID:        uint(programID),
			ContactName:      r.FormValue("contact_name"),
			ContactEmail:     r.FormValue("contact_email"),
			ContactPhone:     r.FormValue("contact_phone"),
			Children:         parseChildren(r),
			Pickups:          parsePickups(r),
			TermsAccepted:    r.FormValue("terms") == "on",
			WaiverAccepted:   r.FormValue("waiver") == "on",
			BehaviorAccepted: r.FormValue("behavior") == "on",
			MediaInternalOK:  r.FormValue("media_internal") == "on",
			MediaMarketingOK: r.FormValue("media_marketing") == "on",
		}
		for _, raw := range r.Form["session_ids"] {
			if id, err := strconv.Atoi(raw); err == nil {
				in.SessionIDs = append(in.SessionIDs, uint(id))
			}
		}

		reg, err := svc.CreateRegistration(in)
		if err != nil {
			if core.IsValidation(err) || core.IsConstraint(err) {
				failRedirect(w, r, err, "/register/"+chi.URLParam(r, "programID"))
				return
			}
			failRedirect(w, r, err, "/register")
			return
		}

		render(t, w, "parents/registration_done.tmpl", "parents/registration_done.tmpl", map[string]any{
			"Title":    "Registration Received",
			"Reg":      reg,
			"Code":     reg.Code,
			"Status":   reg.Status,
			"TotalStr": fmtCents(reg.TotalAmountCents),
		})
	}
}

// parseChildren collects the repeated child_* form rows in order. Rows with
// an empty name are skipped so trailing blank rows on the form don't fail
// validation.
func parseChildren(r *http.Request) []svc.ChildInput {
	names := r.Form["child_name"]
	ages := r.Form["child_age"]
	schools := r.Form["child_school"]
	allergies := r.Form["child_allergies"]
	dietary := r.Form["child_dietary"]
	medical := r.Form["child_medical"]
	special := r.Form["child_special_needs"]
	shirts := r.Form["child_tshirt"]

	at := func(xs []string, i int) string {
		if i < len(xs) {
			return strings.TrimSpace(xs[i])
		}
		return ""
	}

	var out []svc.ChildInput
	for i := range names {
		name := strings.TrimSpace(names[i])
		if name == "" {
			continue
		}
		age, _ := strconv.Atoi(at(ages, i))
		out = append(out, svc.ChildInput{
			Name:                name,
			Age:                 age,
			School:              at(schools, i),
			Allergies:           at(allergies, i),
			DietaryRestrictions: at(dietary, i),
			MedicalConditions:   at(medical, i),
			SpecialNeeds:        at(special, i),
			TShirtSize:          at(shirts, i),
		})
	}
	return out
}

func parsePickups(r *http.Request) []svc.PickupInput {
	names := r.Form["pickup_name"]
	phones := r.Form["pickup_phone"]
	rels := r.Form["pickup_relationship"]

	at := func(xs []string, i int) string {
		if i < len(xs) {
			return strings.TrimSpace(xs[i])
		}
		return ""
	}

	var out []svc.PickupInput
	for i := range names {
		name := strings.TrimSpace(names[i])
		if name == "" {
			continue
		}
		out = append(out, svc.PickupInput{
			Name:         name,
			Phone:        at(phones, i),
			Relationship: at(rels, i),
		})
	}
	return out
}
