package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
)

// GET /qr/{code}.png
func QR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		http.NotFound(w, r)
		return
	}
	// ensure code exists
	var reg models.Registration
	if err := db.Conn().Where("code = ?", code).First(&reg).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	// Encode a URL so scanning opens the registration lookup directly.
	url := baseURL() + "/admin/registrations/lookup?code=" + code

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
