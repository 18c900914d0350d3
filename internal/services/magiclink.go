package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/littlenotes/encore/internal/core"
	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/metrics"
	"github.com/littlenotes/encore/internal/models"
)

const magicLinkTTL = 24 * time.Hour

// IssueMagicLink creates a single-use dashboard token for the email and mails
// the link. If the email has no registrations at all, it still returns nil so
// the response never reveals which addresses are registered, but no token is
// stored and no mail goes out.
func IssueMagicLink(rawEmail, baseURL string) error {
	email, ok := NormEmail(rawEmail)
	if !ok || email == "" {
		return core.NewValidationError("enter a valid email address",
			core.FieldError{Field: "email", Error: "enter a valid email address"})
	}

	var count int64
	if err := db.Conn().Model(&models.Registration{}).
		Where("contact_email = ?", email).Count(&count).Error; err != nil {
		return core.NewTransientError(err, "count registrations")
	}
	if count == 0 {
		// Generic success: the caller's message reads the same either way.
		return nil
	}

	token, err := newToken()
	if err != nil {
		return core.NewTransientError(err, "generate token")
	}
	row := models.MagicLinkToken{
		Token:     token,
		Email:     email,
		ExpiresAt: time.Now().Add(magicLinkTTL),
	}
	if err := db.Conn().Create(&row).Error; err != nil {
		return core.NewTransientError(err, "store token")
	}

	metrics.MagicLinksIssued.Inc()
	sendMail(email, "Your registrations",
		fmt.Sprintf("Open this link to view your registrations:\n\n%s/my?token=%s\n\nThe link works once and expires in 24 hours.", baseURL, token))
	return nil
}

// ValidateMagicLink redeems a token. The lookup and the mark-used update run
// in one transaction so two concurrent requests can't both see an unused row;
// the winner gets the email, everyone after gets invalid. Loading the
// dashboard consumes the link; reloads must re-issue.
func ValidateMagicLink(token string) (email string, valid bool) {
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.MagicLinkToken{}).
			Where("token = ? AND used_at IS NULL AND expires_at > ?", token, now).
			Update("used_at", &now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		var row models.MagicLinkToken
		if err := tx.Where("token = ?", token).First(&row).Error; err != nil {
			return err
		}
		email = row.Email
		return nil
	})
	if err != nil {
		return "", false
	}
	metrics.MagicLinksRedeemed.Inc()
	return email, true
}

// PurgeExpiredTokens deletes long-dead token rows; called opportunistically
// from the admin screens.
func PurgeExpiredTokens() {
	db.Conn().Where("expires_at < ?", time.Now().Add(-7*24*time.Hour)).
		Delete(&models.MagicLinkToken{})
}

// newToken returns 32 bytes (256 bits) of crypto randomness as hex.
func newToken() (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}
