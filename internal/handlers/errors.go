package handlers

import (
	"net/http"
	"net/url"

	"github.com/littlenotes/encore/internal/core"
)

// failRedirect converts a core error into a ?error= redirect. Validation and
// constraint messages are shown verbatim; everything else collapses to the
// generic message so nothing internal (or existence information) leaks.
func failRedirect(w http.ResponseWriter, r *http.Request, err error, to string) {
	var msg string
	switch {
	case core.IsValidation(err), core.IsConstraint(err):
		msg = err.Error()
	case core.IsNotFound(err):
		msg = "code_not_found"
	default:
		msg = "generic"
	}
	http.Redirect(w, r, to+"?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
