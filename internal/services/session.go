package services

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/littlenotes/encore/internal/core"
	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
)

// DeleteSession removes a workshop session. It refuses while any
// non-cancelled, non-archived registration still selects the session; those
// registrations must be cancelled or moved first.
func DeleteSession(sessionID uint) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		var sess models.Session
		if err := tx.First(&sess, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.NewNotFoundError("session not found")
			}
			return core.NewTransientError(err, "lookup session")
		}

		var live int64
		if err := tx.Model(&models.RegistrationSession{}).
			Joins("JOIN registrations r ON r.id = registration_sessions.registration_id").
			Where("registration_sessions.session_id = ? AND r.status NOT IN ?",
				sessionID, []string{models.StatusCancelled, models.StatusArchived}).
			Count(&live).Error; err != nil {
			return core.NewTransientError(err, "count registrations")
		}
		if live > 0 {
			return core.NewConstraintError("session still has active registrations; cancel or move them first")
		}

		if err := tx.Where("session_id = ?", sessionID).Delete(&models.RegistrationSession{}).Error; err != nil {
			return core.NewTransientError(err, "delete session links")
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.AttendanceRecord{}).Error; err != nil {
			return core.NewTransientError(err, "delete attendance")
		}
		if err := tx.Delete(&models.Session{}, sessionID).Error; err != nil {
			return core.NewTransientError(err, "delete session")
		}
		return nil
	})
}
