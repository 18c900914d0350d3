package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/littlenotes/encore/internal/core"
	"github.com/littlenotes/encore/internal/models"
)

func TestEnsureAccount_AdoptsRegistrations(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)
	reg := mustCreateRegistration(t, campInput(camp.ID, "A"))
	assert.Nil(t, reg.AccountID)

	acct, err := EnsureAccount("DANA@example.com", "Dana Parent", "(555) 123-4567")
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", acct.Email)
	assert.Equal(t, "5551234567", acct.Phone)

	var got models.Registration
	require.NoError(t, gdb.First(&got, reg.ID).Error)
	require.NotNil(t, got.AccountID)
	assert.Equal(t, acct.ID, *got.AccountID)

	// Second call returns the same account.
	again, err := EnsureAccount("dana@example.com", "", "")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, again.ID)
}

func TestDeleteAccount_BlockedWhileReferenced(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)
	mustCreateRegistration(t, campInput(camp.ID, "A"))

	acct, err := EnsureAccount("dana@example.com", "Dana", "")
	require.NoError(t, err)

	err = DeleteAccount(acct.ID)
	require.Error(t, err)
	assert.True(t, core.IsConstraint(err))

	empty, err := EnsureAccount("empty@example.com", "Empty", "")
	require.NoError(t, err)
	require.NoError(t, DeleteAccount(empty.ID))

	var n int64
	gdb.Model(&models.Account{}).Where("id = ?", empty.ID).Count(&n)
	assert.EqualValues(t, 0, n)
}

func TestAddAccountChild(t *testing.T) {
	gdb := openTestDB(t)
	acct := models.Account{Email: "p@example.com", Name: "P"}
	require.NoError(t, gdb.Create(&acct).Error)

	child, err := AddAccountChild(acct.ID, "Sam", "Lincoln Elementary", time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, acct.ID, child.AccountID)

	_, err = AddAccountChild(acct.ID, "   ", "", time.Time{})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}
