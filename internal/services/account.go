package services

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/littlenotes/encore/internal/core"
	"github.com/littlenotes/encore/internal/db"
	"github.com/littlenotes/encore/internal/models"
)

// EnsureAccount finds or creates the account for an email and adopts any
// registrations placed with that email before the account existed.
func EnsureAccount(rawEmail, name, phone string) (*models.Account, error) {
	email, ok := NormEmail(rawEmail)
	if !ok || email == "" {
		return nil, core.NewValidationError("enter a valid email address",
			core.FieldError{Field: "email", Error: "enter a valid email address"})
	}

	var acct models.Account
	err := db.Conn().Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&acct).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			acct = models.Account{Email: email, Name: strings.TrimSpace(name), Phone: NormPhone(phone)}
			if err := tx.Create(&acct).Error; err != nil {
				return core.NewTransientError(err, "create account")
			}
		} else if err != nil {
			return core.NewTransientError(err, "lookup account")
		}

		// Adopt orphan registrations made with this email.
		if err := tx.Model(&models.Registration{}).
			Where("contact_email = ? AND account_id IS NULL", email).
			Update("account_id", acct.ID).Error; err != nil {
			return core.NewTransientError(err, "link registrations")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// AddAccountChild stores a reusable child profile on the account.
func AddAccountChild(accountID uint, name, school string, birthDate time.Time) (*models.AccountChild, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, core.NewValidationError("name is required",
			core.FieldError{Field: "name", Error: "name is required"})
	}
	child := models.AccountChild{AccountID: accountID, Name: name, School: strings.TrimSpace(school), BirthDate: birthDate}
	if err := db.Conn().Create(&child).Error; err != nil {
		return nil, core.NewTransientError(err, "create account child")
	}
	return &child, nil
}

// DeleteAccount hard-deletes an account only when nothing references it:
// zero children and zero registrations. Anything else keeps its data.
func DeleteAccount(accountID uint) error {
	return db.Conn().Transaction(func(tx *gorm.DB) error {
		var regs, kids int64
		if err := tx.Model(&models.Registration{}).Where("account_id = ?", accountID).Count(&regs).Error; err != nil {
			return core.NewTransientError(err, "count registrations")
		}
		if err := tx.Model(&models.AccountChild{}).Where("account_id = ?", accountID).Count(&kids).Error; err != nil {
			return core.NewTransientError(err, "count children")
		}
		if regs > 0 || kids > 0 {
			return core.NewConstraintError("account still has registrations or child profiles")
		}
		return wrapTransient(tx.Delete(&models.Account{}, accountID).Error, "delete account")
	})
}
