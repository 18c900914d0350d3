package services

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/littlenotes/encore/internal/core"
	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/metrics"
	"github.com/littlenotes/encore/internal/models"
)

// AttendanceSummary is the per-session aggregate shown at the top of the
// attendance screen. Waiting is derived, never stored:
// waiting = total − checked_in − no_show − cancelled.
type AttendanceSummary struct {
	Expected  int
	CheckedIn int
	NoShow    int
	Cancelled int
}

func (s AttendanceSummary) Total() int {
	return s.Expected + s.CheckedIn + s.NoShow + s.Cancelled
}

// GenerateAttendance ensures exactly one attendance row per (session, child)
// for every child on a non-cancelled, non-archived registration selecting the
// session. The attendance screen calls it on every load, so it has to be
// idempotent; the unique (session_id, child_id) index backs that up. Rows
// whose registration has since cancelled are flipped to cancelled.
func GenerateAttendance(sessionID uint) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		var sess models.Session
		if err := tx.First(&sess, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.NewNotFoundError("session not found")
			}
			return core.NewTransientError(err, "lookup session")
		}

		var childIDs []uint
		if err := tx.Model(&models.Child{}).
			Joins("JOIN registration_sessions rs ON rs.registration_id = children.registration_id").
			Joins("JOIN registrations r ON r.id = children.registration_id").
			Where("rs.session_id = ? AND r.status NOT IN ?",
				sessionID, []string{models.StatusCancelled, models.StatusArchived}).
			Pluck("children.id", &childIDs).Error; err != nil {
			return core.NewTransientError(err, "load children")
		}

		for _, cid := range childIDs {
			rec := models.AttendanceRecord{SessionID: sessionID, ChildID: cid, Status: models.AttendanceExpected}
			if err := tx.Where(models.AttendanceRecord{SessionID: sessionID, ChildID: cid}).
				FirstOrCreate(&rec).Error; err != nil {
				return core.NewTransientError(err, "create attendance row")
			}
		}

		// Children whose registration cancelled after generation keep their
		// row but stop counting as expected.
		var cancelledIDs []uint
		if err := tx.Model(&models.Child{}).
			Joins("JOIN registration_sessions rs ON rs.registration_id = children.registration_id").
			Joins("JOIN registrations r ON r.id = children.registration_id").
			Where("rs.session_id = ? AND r.status IN ?",
				sessionID, []string{models.StatusCancelled, models.StatusArchived}).
			Pluck("children.id", &cancelledIDs).Error; err != nil {
			return core.NewTransientError(err, "load cancelled children")
		}
		if len(cancelledIDs) > 0 {
			if err := tx.Model(&models.AttendanceRecord{}).
				Where("session_id = ? AND child_id IN ? AND status = ?",
					sessionID, cancelledIDs, models.AttendanceExpected).
				Update("status", models.AttendanceCancelled).Error; err != nil {
				return core.NewTransientError(err, "cancel attendance rows")
			}
		}
		return nil
	})
}

// CheckIn marks an expected child checked in, recording who and when.
func CheckIn(sessionID, childID uint, actor string) error {
	err := transitionAttendance(sessionID, childID, models.AttendanceExpected, func(tx *gorm.DB, rec *models.AttendanceRecord) error {
		now := time.Now()
		return tx.Model(rec).Updates(map[string]any{
			"status":        models.AttendanceCheckedIn,
			"checked_in_by": actor,
			"checked_in_at": &now,
		}).Error
	})
	if err == nil {
		metrics.CheckIns.Inc()
	}
	return err
}

// UndoCheckIn reverses a check-in, clearing actor and timestamp.
func UndoCheckIn(sessionID, childID uint) error {
	return transitionAttendance(sessionID, childID, models.AttendanceCheckedIn, func(tx *gorm.DB, rec *models.AttendanceRecord) error {
		return tx.Model(rec).Updates(map[string]any{
			"status":        models.AttendanceExpected,
			"checked_in_by": "",
			"checked_in_at": nil,
		}).Error
	})
}

// MarkNoShow flags an expected child as a no-show.
func MarkNoShow(sessionID, childID uint) error {
	return transitionAttendance(sessionID, childID, models.AttendanceExpected, func(tx *gorm.DB, rec *models.AttendanceRecord) error {
		return tx.Model(rec).Update("status", models.AttendanceNoShow).Error
	})
}

// ResetAttendance returns a no-show (or operator-cancelled) row to expected.
func ResetAttendance(sessionID, childID uint) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		rec, err := findAttendanceTx(tx, sessionID, childID)
		if err != nil {
			return err
		}
		switch rec.Status {
		case models.AttendanceNoShow, models.AttendanceCancelled:
		default:
			return core.NewConstraintError("only no-show or cancelled rows can be reset")
		}
		return wrapTransient(tx.Model(rec).Updates(map[string]any{
			"status":        models.AttendanceExpected,
			"checked_in_by": "",
			"checked_in_at": nil,
		}).Error, "reset attendance")
	})
}

// Summarize counts attendance rows for a session by status.
func Summarize(sessionID uint) (AttendanceSummary, error) {
	var rows []struct {
		Status string
		N      int
	}
	if err := db.Conn().Model(&models.AttendanceRecord{}).
		Select("status, COUNT(*) as n").
		Where("session_id = ?", sessionID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return AttendanceSummary{}, core.NewTransientError(err, "summarize attendance")
	}
	var s AttendanceSummary
	for _, r := range rows {
		switch r.Status {
		case models.AttendanceExpected:
			s.Expected = r.N
		case models.AttendanceCheckedIn:
			s.CheckedIn = r.N
		case models.AttendanceNoShow:
			s.NoShow = r.N
		case models.AttendanceCancelled:
			s.Cancelled = r.N
		}
	}
	return s, nil
}

func transitionAttendance(sessionID, childID uint, fromStatus string, apply func(tx *gorm.DB, rec *models.AttendanceRecord) error) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		rec, err := findAttendanceTx(tx, sessionID, childID)
		if err != nil {
			return err
		}
		if rec.Status != fromStatus {
			return core.NewConstraintError("attendance row is " + rec.Status + ", not " + fromStatus)
		}
		return wrapTransient(apply(tx, rec), "update attendance")
	})
}

func findAttendanceTx(tx *gorm.DB, sessionID, childID uint) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	if err := tx.Where("session_id = ? AND child_id = ?", sessionID, childID).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError("attendance row not found")
		}
		return nil, core.NewTransientError(err, "lookup attendance")
	}
	return &rec, nil
}

func wrapTransient(err error, msg string) error {
	if err == nil {
		return nil
	}
	return core.NewTransientError(err, msg)
}
