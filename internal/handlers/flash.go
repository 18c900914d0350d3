package handlers

import (
	"net/http"
	"strings"
)

type Flash struct {
	Kind string // "ok" or "error"
	Text string
}

var okText = map[string]string{
	"saved":          "Saved.",
	"child_saved":    "Child saved.",
	"child_removed":  "Child removed.",
	"registered":     "Registration received.",
	"checked_in":     "Checked in.",
	"undone":         "Check-in undone.",
	"no_show":        "Marked as no-show.",
	"reset":          "Reset to expected.",
	"cancelled":      "Registration cancelled.",
	"archived":       "Registration archived.",
	"restored":       "Registration restored.",
	"deleted":        "Deleted.",
	"pickup_saved":   "Pickup person saved.",
	"pickup_removed": "Pickup person removed.",
	"link_sent":      "If that email has registrations with us, a link is on its way.",
}

var errText = map[string]string{
	"missing":          "Required fields are missing.",
	"invalid_email":    "Invalid email address.",
	"invalid_age":      "Age must be between 1 and 18.",
	"last_child":       "A registration must keep at least one child. Cancel the registration instead.",
	"bad_transition":   "That status change is not allowed.",
	"session_has_regs": "Session still has active registrations. Cancel or move them first.",
	"code_not_found":   "Code not found.",
	"invalid_checkin":  "Not eligible for check-in.",
	"invalid_token":    "This link is invalid or has expired. Request a new one below.",
	"program_missing":  "Program not found.",
	"generic":          "Something went wrong. Please try again.",
}

// MakeFlash reads query params and/or explicit strings to build a Flash.
func MakeFlash(r *http.Request, errStr, msgStr string) *Flash {
	q := r.URL.Query()

	errRaw := strings.TrimSpace(q.Get("error"))
	okRaw := strings.TrimSpace(q.Get("ok"))

	if errRaw != "" {
		key := strings.ToLower(errRaw)
		if t, ok := errText[key]; ok {
			return &Flash{Kind: "error", Text: t}
		}
		return &Flash{Kind: "error", Text: errRaw}
	}
	if okRaw != "" {
		key := strings.ToLower(okRaw)
		if t, ok := okText[key]; ok {
			return &Flash{Kind: "ok", Text: t}
		}
		return &Flash{Kind: "ok", Text: okRaw}
	}

	if errStr != "" {
		return &Flash{Kind: "error", Text: errStr}
	}
	if msgStr != "" {
		return &Flash{Kind: "ok", Text: msgStr}
	}
	return nil
}
