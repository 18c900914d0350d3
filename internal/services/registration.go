package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/littlenotes/encore/internal/core"
	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/metrics"
	"github.com/littlenotes/encore/internal/models"
	"github.com/littlenotes/encore/internal/pricing"
)

// transitions is the closed set of direct status changes SetStatus accepts.
// Archive and Restore have their own operations and are not reachable here.
var transitions = map[string][]string{
	models.StatusPending:   {models.StatusConfirmed, models.StatusWaitlist, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCancelled},
	models.StatusWaitlist:  {models.StatusConfirmed, models.StatusCancelled},
}

func transitionAllowed(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CreateRegistrationInput is the boundary shape shared by the public forms
// and the admin console. Both paths require at least one child.
type CreateRegistrationInput struct {
	ProgramID  uint
	SessionIDs []uint // workshop only; the selected sessions
	AccountID  *uint

	ContactName  string
	ContactEmail string
	ContactPhone string

	Children []ChildInput
	Pickups  []PickupInput

	TermsAccepted    bool
	WaiverAccepted   bool
	BehaviorAccepted bool
	MediaInternalOK  bool
	MediaMarketingOK bool
}

// CreateRegistration creates a registration with its children, pickups, and
// session selections, prices it, and sends the confirmation email after the
// commit. Workshop registrations past the smallest selected session's
// capacity start on the waitlist.
func CreateRegistration(in CreateRegistrationInput) (*models.Registration, error) {
	if len(in.Children) == 0 {
		return nil, core.NewValidationError("at least one child is required",
			core.FieldError{Field: "children", Error: "add at least one child"})
	}
	for _, c := range in.Children {
		if err := validateChildInput(c); err != nil {
			return nil, err
		}
	}
	for _, p := range in.Pickups {
		if err := validatePickupInput(p); err != nil {
			return nil, err
		}
	}
	email, ok := NormEmail(in.ContactEmail)
	if !ok || email == "" {
		return nil, core.NewValidationError("a contact email is required",
			core.FieldError{Field: "email", Error: "enter a valid email address"})
	}

	var reg models.Registration
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		var program models.Program
		if err := tx.First(&program, in.ProgramID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.NewNotFoundError("program not found")
			}
			return core.NewTransientError(err, "load program")
		}
		if program.Type == models.ProgramWorkshop && len(in.SessionIDs) == 0 {
			return core.NewValidationError("select at least one session",
				core.FieldError{Field: "sessions", Error: "select at least one session"})
		}

		now := time.Now()
		reg = models.Registration{
			ProgramID:     program.ID,
			ProgramType:   program.Type,
			AccountID:     in.AccountID,
			ContactName:   strings.TrimSpace(in.ContactName),
			ContactEmail:  email,
			ContactPhone:  NormPhone(in.ContactPhone),
			Status:        models.StatusPending,
			PaymentStatus: models.PaymentUnpaid,
			Code:          generateRegCode(tx),
		}
		if reg.Code == "" {
			return core.NewTransientError(errors.New("code space exhausted"), "generate code")
		}
		stampConsents(&reg, in, now)

		if err := tx.Create(&reg).Error; err != nil {
			return core.NewTransientError(err, "create registration")
		}

		for _, sid := range in.SessionIDs {
			var sess models.Session
			if err := tx.First(&sess, sid).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return core.NewNotFoundError("session not found")
				}
				return core.NewTransientError(err, "load session")
			}
			if sess.ProgramID != program.ID {
				return core.NewConstraintError("session does not belong to this program")
			}
			if err := tx.Create(&models.RegistrationSession{RegistrationID: reg.ID, SessionID: sid}).Error; err != nil {
				return core.NewTransientError(err, "link session")
			}
		}

		for i, c := range in.Children {
			child := childFromInput(c, reg.ID, i, program)
			if err := tx.Create(&child).Error; err != nil {
				return core.NewTransientError(err, "create child")
			}
		}
		for _, p := range in.Pickups {
			pickup := models.AuthorizedPickup{
				RegistrationID: reg.ID,
				Name:           strings.TrimSpace(p.Name),
				Phone:          NormPhone(p.Phone),
				Relationship:   strings.TrimSpace(p.Relationship),
			}
			if err := tx.Create(&pickup).Error; err != nil {
				return core.NewTransientError(err, "create pickup")
			}
		}

		if err := repriceTx(tx, reg.ID); err != nil {
			return err
		}

		// Workshops beyond capacity start on the waitlist.
		if program.Type == models.ProgramWorkshop && overCapacityTx(tx, in.SessionIDs) {
			if err := tx.Model(&models.Registration{}).Where("id = ?", reg.ID).
				Update("status", models.StatusWaitlist).Error; err != nil {
				return core.NewTransientError(err, "waitlist registration")
			}
		}

		return tx.First(&reg, reg.ID).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsCreated.WithLabelValues(reg.ProgramType).Inc()
	sendMail(reg.ContactEmail, "Registration received",
		fmt.Sprintf("Hi %s,\n\nWe received your registration (%s). Your reference code is %s.\n\nLittle Notes Music",
			reg.ContactName, reg.ProgramType, reg.Code))
	return &reg, nil
}

// SetStatus applies a direct status transition. Transitioning into cancelled
// stamps cancelled_at and stores the optional reason; payment state is never
// touched automatically.
func SetStatus(regID uint, newStatus, reason string) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		reg, err := lockRegistrationTx(tx, regID)
		if err != nil {
			return err
		}
		if reg.Status == newStatus {
			return nil
		}
		if !transitionAllowed(reg.Status, newStatus) {
			return core.NewConstraintError(
				fmt.Sprintf("cannot move a %s registration to %s", reg.Status, newStatus))
		}
		updates := map[string]any{"status": newStatus}
		if newStatus == models.StatusCancelled {
			now := time.Now()
			updates["cancelled_at"] = &now
			updates["cancel_reason"] = strings.TrimSpace(reason)
		}
		if err := tx.Model(&models.Registration{}).Where("id = ?", regID).Updates(updates).Error; err != nil {
			return core.NewTransientError(err, "update status")
		}
		metrics.StatusTransitions.WithLabelValues(newStatus).Inc()
		return nil
	})
}

// CancelByCode is the parent self-service path: cancel via the reference code
// printed on the confirmation.
func CancelByCode(code, reason string) error {
	var reg models.Registration
	if err := db.Conn().Where("code = ?", code).First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.NewNotFoundError("registration not found")
		}
		return core.NewTransientError(err, "lookup registration")
	}
	if reg.Status == models.StatusCancelled {
		return nil
	}
	return SetStatus(reg.ID, models.StatusCancelled, reason)
}

// AddChild appends a child at the next position and reprices the
// registration in the same transaction.
func AddChild(regID uint, in ChildInput) (*models.Child, error) {
	if err := validateChildInput(in); err != nil {
		return nil, err
	}
	var child models.Child
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		reg, err := lockRegistrationTx(tx, regID)
		if err != nil {
			return err
		}
		var program models.Program
		if err := tx.First(&program, reg.ProgramID).Error; err != nil {
			return core.NewTransientError(err, "load program")
		}
		var count int64
		if err := tx.Model(&models.Child{}).Where("registration_id = ?", regID).Count(&count).Error; err != nil {
			return core.NewTransientError(err, "count children")
		}
		child = childFromInput(in, regID, int(count), program)
		if err := tx.Create(&child).Error; err != nil {
			return core.NewTransientError(err, "create child")
		}
		return repriceTx(tx, regID)
	})
	if err != nil {
		return nil, err
	}
	return &child, nil
}

// RemoveChild deletes a child and reprices the remaining children at their
// shifted positions. Removing the last child is refused: cancel the whole
// registration instead.
func RemoveChild(childID uint) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		var child models.Child
		if err := tx.First(&child, childID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return core.NewNotFoundError("child not found")
			}
			return core.NewTransientError(err, "lookup child")
		}
		var count int64
		if err := tx.Model(&models.Child{}).Where("registration_id = ?", child.RegistrationID).Count(&count).Error; err != nil {
			return core.NewTransientError(err, "count children")
		}
		if count <= 1 {
			return core.NewConstraintError("a registration must keep at least one child; cancel the registration instead")
		}
		if err := tx.Delete(&models.Child{}, childID).Error; err != nil {
			return core.NewTransientError(err, "delete child")
		}
		return repriceTx(tx, child.RegistrationID)
	})
}

// Archive soft-deletes: any status except archived may archive; all child and
// pickup rows stay.
func Archive(regID uint, actor, reason string) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		reg, err := lockRegistrationTx(tx, regID)
		if err != nil {
			return err
		}
		if reg.Status == models.StatusArchived {
			return core.NewConstraintError("registration is already archived")
		}
		now := time.Now()
		updates := map[string]any{
			"status":         models.StatusArchived,
			"archived_at":    &now,
			"archive_reason": strings.TrimSpace(reason),
			"archived_by":    actor,
		}
		if err := tx.Model(&models.Registration{}).Where("id = ?", regID).Updates(updates).Error; err != nil {
			return core.NewTransientError(err, "archive registration")
		}
		metrics.StatusTransitions.WithLabelValues(models.StatusArchived).Inc()
		return nil
	})
}

// Restore brings an archived registration back with an operator-chosen
// target status.
func Restore(regID uint, targetStatus string) error {
	switch targetStatus {
	case models.StatusPending, models.StatusConfirmed, models.StatusCancelled:
	default:
		return core.NewConstraintError("restore target must be pending, confirmed, or cancelled")
	}
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		reg, err := lockRegistrationTx(tx, regID)
		if err != nil {
			return err
		}
		if reg.Status != models.StatusArchived {
			return core.NewConstraintError("only archived registrations can be restored")
		}
		updates := map[string]any{
			"status":         targetStatus,
			"archived_at":    nil,
			"archive_reason": "",
			"archived_by":    "",
		}
		if err := tx.Model(&models.Registration{}).Where("id = ?", regID).Updates(updates).Error; err != nil {
			return core.NewTransientError(err, "restore registration")
		}
		metrics.StatusTransitions.WithLabelValues(targetStatus).Inc()
		return nil
	})
}

// Delete hard-deletes a registration and every dependent row. Deletion is
// terminal; there is no undo.
func Delete(regID uint) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		if _, err := lockRegistrationTx(tx, regID); err != nil {
			return err
		}
		var childIDs []uint
		if err := tx.Model(&models.Child{}).Where("registration_id = ?", regID).
			Pluck("id", &childIDs).Error; err != nil {
			return core.NewTransientError(err, "load children")
		}
		if len(childIDs) > 0 {
			if err := tx.Where("child_id IN ?", childIDs).Delete(&models.AttendanceRecord{}).Error; err != nil {
				return core.NewTransientError(err, "delete attendance")
			}
		}
		for _, m := range []any{&models.Child{}, &models.AuthorizedPickup{}, &models.RegistrationSession{}} {
			if err := tx.Where("registration_id = ?", regID).Delete(m).Error; err != nil {
				return core.NewTransientError(err, "delete dependents")
			}
		}
		if err := tx.Delete(&models.Registration{}, regID).Error; err != nil {
			return core.NewTransientError(err, "delete registration")
		}
		return nil
	})
}

// SetPaymentStatus records a payment state change. Waived does not alter the
// total or the recorded amount paid; it only changes how the outstanding
// balance reads.
func SetPaymentStatus(regID uint, status string, amountPaidCents int) error {
	if !models.ValidPaymentStatus(status) {
		return core.NewValidationError("unknown payment status",
			core.FieldError{Field: "payment_status", Error: "unknown payment status"})
	}
	if amountPaidCents < 0 {
		return core.NewValidationError("amount paid cannot be negative",
			core.FieldError{Field: "amount_paid", Error: "amount paid cannot be negative"})
	}
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		if _, err := lockRegistrationTx(tx, regID); err != nil {
			return err
		}
		updates := map[string]any{
			"payment_status":    status,
			"amount_paid_cents": amountPaidCents,
		}
		if err := tx.Model(&models.Registration{}).Where("id = ?", regID).Updates(updates).Error; err != nil {
			return core.NewTransientError(err, "update payment")
		}
		return nil
	})
}

// repriceTx recomputes every child's positional discount and the
// registration total, compacting positions after removals. This is the only
// place the recompute-on-reorder rule is enforced.
func repriceTx(tx *gorm.DB, regID uint) error {
	var reg models.Registration
	if err := tx.First(&reg, regID).Error; err != nil {
		return core.NewTransientError(err, "load registration")
	}
	var program models.Program
	if err := tx.First(&program, reg.ProgramID).Error; err != nil {
		return core.NewTransientError(err, "load program")
	}
	var children []models.Child
	if err := tx.Where("registration_id = ?", regID).
		Order("position asc, id asc").Find(&children).Error; err != nil {
		return core.NewTransientError(err, "load children")
	}

	for i := range children {
		disc := pricing.Discount(i, program.SiblingDiscountCents, program.MaxDiscountCents)
		if children[i].Position != i || children[i].DiscountCents != disc {
			children[i].Position = i
			children[i].DiscountCents = disc
			if err := tx.Model(&models.Child{}).Where("id = ?", children[i].ID).
				Updates(map[string]any{"position": i, "discount_cents": disc}).Error; err != nil {
				return core.NewTransientError(err, "update child discount")
			}
		}
	}

	sessionCount := 1
	if reg.ProgramType == models.ProgramWorkshop {
		var n int64
		if err := tx.Model(&models.RegistrationSession{}).
			Where("registration_id = ?", regID).Count(&n).Error; err != nil {
			return core.NewTransientError(err, "count sessions")
		}
		sessionCount = int(n)
	}

	total := pricing.RegistrationTotal(children, program, sessionCount)
	if err := tx.Model(&models.Registration{}).Where("id = ?", regID).
		Update("total_amount_cents", total).Error; err != nil {
		return core.NewTransientError(err, "update total")
	}
	return nil
}

func lockRegistrationTx(tx *gorm.DB, regID uint) (*models.Registration, error) {
	var reg models.Registration
	if err := tx.First(&reg, regID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError("registration not found")
		}
		return nil, core.NewTransientError(err, "lookup registration")
	}
	return &reg, nil
}

func childFromInput(in ChildInput, regID uint, position int, program models.Program) models.Child {
	return models.Child{
		RegistrationID:      regID,
		AccountChildID:      in.AccountChildID,
		Name:                strings.TrimSpace(in.Name),
		Age:                 in.Age,
		School:              strings.TrimSpace(in.School),
		Allergies:           strings.TrimSpace(in.Allergies),
		DietaryRestrictions: strings.TrimSpace(in.DietaryRestrictions),
		MedicalConditions:   strings.TrimSpace(in.MedicalConditions),
		SpecialNeeds:        strings.TrimSpace(in.SpecialNeeds),
		TShirtSize:          strings.TrimSpace(in.TShirtSize),
		Position:            position,
		DiscountCents:       pricing.Discount(position, program.SiblingDiscountCents, program.MaxDiscountCents),
	}
}

func stampConsents(reg *models.Registration, in CreateRegistrationInput, now time.Time) {
	if in.TermsAccepted {
		reg.TermsAccepted = true
		reg.TermsAcceptedAt = &now
	}
	if in.WaiverAccepted {
		reg.WaiverAccepted = true
		reg.WaiverAcceptedAt = &now
	}
	if in.BehaviorAccepted {
		reg.BehaviorAccepted = true
		reg.BehaviorAcceptedAt = &now
	}
	if in.MediaInternalOK {
		reg.MediaInternalOK = true
		reg.MediaInternalAt = &now
	}
	if in.MediaMarketingOK {
		reg.MediaMarketingOK = true
		reg.MediaMarketingAt = &now
	}
}

// overCapacityTx reports whether any selected session is now past capacity,
// counting children on pending/confirmed registrations linked to it (the
// caller's freshly inserted children included).
func overCapacityTx(tx *gorm.DB, sessionIDs []uint) bool {
	for _, sid := range sessionIDs {
		var sess models.Session
		if err := tx.First(&sess, sid).Error; err != nil {
			continue
		}
		if sess.Capacity <= 0 {
			continue // unlimited
		}
		var enrolled int64
		tx.Model(&models.Child{}).
			Joins("JOIN registration_sessions rs ON rs.registration_id = children.registration_id").
			Joins("JOIN registrations r ON r.id = children.registration_id").
			Where("rs.session_id = ? AND r.status IN ?", sid,
				[]string{models.StatusPending, models.StatusConfirmed}).
			Count(&enrolled)
		if int(enrolled) > sess.Capacity {
			return true
		}
	}
	return false
}

// generateRegCode creates a unique REG-XXXXXXXX code (uppercase hex).
func generateRegCode(tx *gorm.DB) string {
	for i := 0; i < 20; i++ {
		var buf [4]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return ""
		}
		code := "REG-" + strings.ToUpper(hex.EncodeToString(buf[:]))
		var exists int64
		_ = tx.Model(&models.Registration{}).Where("code = ?", code).Count(&exists).Error
		if exists == 0 {
			return code
		}
	}
	return ""
}
