package handlers

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/littlenotes/encore/internal/db"
	svc "github.com/littlenotes/encore/internal/services"
)

type attendanceRow struct {
	ChildID     uint
	ChildName   string
	RegCode     string
	Status      string
	CheckedInBy string
	CheckedInAt *time.Time
}

// GET /admin/sessions/{id}/attendance
//
// Every load regenerates the attendance rows for the session; generation is
// idempotent so concurrent tabs are fine.
func AdminAttendance(t *template.Template) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, err := sessionParam(r)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		if err := svc.GenerateAttendance(sessionID); err != nil {
			failRedirect(w, r, err, "/admin/programs")
			return
		}

		var rows []attendanceRow
		if err := db.Conn().Table("attendance_records ar").
			Select(`ar.child_id, ar.status, ar.checked_in_by, ar.checked_in_at,
					children.name as child_name,
					r.code as reg_code`).
			Joins("JOIN children ON children.id = ar.child_id").
			Joins("JOIN registrations r ON r.id = children.registration_id").
			Where("ar.session_id = ?", sessionID).
			Order("children.name asc").
			Scan(&rows).Error; err != nil {
			http.Error(w, "unable to load attendance", 500)
			return
		}

		summary, err := svc.Summarize(sessionID)
		if err != nil {
			http.Error(w, "unable to summarize", 500)
			return
		}

		render(t, w, "admin/attendance.tmpl", "admin/attendance.tmpl", map[string]any{
			"Title":     "Admin • Attendance",
			"SessionID": sessionID,
			"Rows":      rows,
			"Summary":   summary,
			// Waiting is derived, never stored.
			"Waiting": summary.Total() - summary.CheckedIn - summary.NoShow - summary.Cancelled,
			"Flash":   MakeFlash(r, "", ""),
		})
	}
}

// POST /admin/sessions/{id}/attendance/{childID}/checkin
func AdminCheckIn(w http.ResponseWriter, r *http.Request) {
	attendanceAction(w, r, "checked_in", func(sessionID, childID uint) error {
		return svc.CheckIn(sessionID, childID, adminActor(r))
	})
}

// POST /admin/sessions/{id}/attendance/{childID}/undo
func AdminUndoCheckIn(w http.ResponseWriter, r *http.Request) {
	attendanceAction(w, r, "undone", svc.UndoCheckIn)
}

// POST /admin/sessions/{id}/attendance/{childID}/noshow
func AdminMarkNoShow(w http.ResponseWriter, r *http.Request) {
	attendanceAction(w, r, "no_show", svc.MarkNoShow)
}

// POST /admin/sessions/{id}/attendance/{childID}/reset
func AdminResetAttendance(w http.ResponseWriter, r *http.Request) {
	attendanceAction(w, r, "reset", svc.ResetAttendance)
}

func attendanceAction(w http.ResponseWriter, r *http.Request, okKey string, op func(sessionID, childID uint) error) {
	sessionID, err := sessionParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	childID, err := strconv.Atoi(chi.URLParam(r, "childID"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	page := "/admin/sessions/" + strconv.Itoa(int(sessionID)) + "/attendance"
	if err := op(sessionID, uint(childID)); err != nil {
		failRedirect(w, r, err, page)
		return
	}
	http.Redirect(w, r, page+"?ok="+okKey, http.StatusSeeOther)
}

func sessionParam(r *http.Request) (uint, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
