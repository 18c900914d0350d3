package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/littlenotes/encore/internal/core"
	"github.com/littlenotes/encore/internal/models"
)

func TestCreateRegistration_CampPricing(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)

	reg := mustCreateRegistration(t, campInput(camp.ID, "A", "B", "C", "D", "E"))

	assert.Equal(t, models.StatusPending, reg.Status)
	assert.Equal(t, 191000, reg.TotalAmountCents) // 400+390+380+370+370

	var children []models.Child
	require.NoError(t, gdb.Where("registration_id = ?", reg.ID).Order("position asc").Find(&children).Error)
	require.Len(t, children, 5)
	wantDisc := []int{0, 1000, 2000, 3000, 3000}
	for i, c := range children {
		assert.Equal(t, i, c.Position)
		assert.Equal(t, wantDisc[i], c.DiscountCents, "child %d", i)
	}
	assert.NotEmpty(t, reg.Code)
	assert.NotNil(t, reg.TermsAcceptedAt)
	assert.Nil(t, reg.BehaviorAcceptedAt)
}

func TestCreateRegistration_WorkshopSessionsMultiplier(t *testing.T) {
	gdb := openTestDB(t)
	ws, sessions := seedWorkshop(t, gdb, 3, 10)

	in := campInput(ws.ID, "A", "B")
	for _, s := range sessions {
		in.SessionIDs = append(in.SessionIDs, s.ID)
	}
	reg := mustCreateRegistration(t, in)

	// (75 + 65) × 3 sessions = $420.
	assert.Equal(t, 42000, reg.TotalAmountCents)
}

func TestCreateRegistration_RequiresChild(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)

	_, err := CreateRegistration(campInput(camp.ID))
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestCreateRegistration_AgeOutOfRange(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)

	in := campInput(camp.ID)
	in.Children = []ChildInput{{Name: "Old Kid", Age: 25}}
	_, err := CreateRegistration(in)
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestCreateRegistration_WorkshopWaitlistOverCapacity(t *testing.T) {
	gdb := openTestDB(t)
	ws, sessions := seedWorkshop(t, gdb, 1, 2)

	first := campInput(ws.ID, "A", "B")
	first.SessionIDs = []uint{sessions[0].ID}
	reg1 := mustCreateRegistration(t, first)
	assert.Equal(t, models.StatusPending, reg1.Status)

	second := campInput(ws.ID, "C")
	second.ContactEmail = "other@example.com"
	second.SessionIDs = []uint{sessions[0].ID}
	reg2 := mustCreateRegistration(t, second)
	assert.Equal(t, models.StatusWaitlist, reg2.Status)
}

func TestSetStatus_Transitions(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)
	reg := mustCreateRegistration(t, campInput(camp.ID, "A"))

	require.NoError(t, SetStatus(reg.ID, models.StatusConfirmed, ""))

	// confirmed → pending is not in the table.
	err := SetStatus(reg.ID, models.StatusPending, "")
	require.Error(t, err)
	assert.True(t, core.IsConstraint(err))

	require.NoError(t, SetStatus(reg.ID, models.StatusCancelled, "family moved away"))

	var got models.Registration
	require.NoError(t, gdb.First(&got, reg.ID).Error)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)
	assert.Equal(t, "family moved away", got.CancelReason)
	// Payment state is never reversed automatically.
	assert.Equal(t, models.PaymentUnpaid, got.PaymentStatus)

	// cancelled is terminal for direct transitions.
	err = SetStatus(reg.ID, models.StatusConfirmed, "")
	require.Error(t, err)
	assert.True(t, core.IsConstraint(err))
}

func TestAddChild_Reprices(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)
	reg := mustCreateRegistration(t, campInput(camp.ID, "A"))
	assert.Equal(t, 40000, reg.TotalAmountCents)

	child, err := AddChild(reg.ID, ChildInput{Name: "B", Age: 9})
	require.NoError(t, err)
	assert.Equal(t, 1, child.Position)
	assert.Equal(t, 1000, child.DiscountCents)

	var got models.Registration
	require.NoError(t, gdb.First(&got, reg.ID).Error)
	assert.Equal(t, 79000, got.TotalAmountCents)
}

func TestAddChild_Invalid(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)
	reg := mustCreateRegistration(t, campInput(camp.ID, "A"))

	_, err := AddChild(reg.ID, ChildInput{Name: "", Age: 10})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))

	_, err = AddChild(reg.ID, ChildInput{Name: "Zero", Age: 0})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestRemoveChild_ReindexesRemaining(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)
	reg := mustCreateRegistration(t, campInput(camp.ID, "A", "B", "C"))

	var children []models.Child
	require.NoError(t, gdb.Where("registration_id = ?", reg.ID).Order("position asc").Find(&children).Error)
	require.Len(t, children, 3)

	// Remove the middle child: C shifts from index 2 to index 1 and picks up
	// the first discount tier.
	require.NoError(t, RemoveChild(children[1].ID))

	var remaining []models.Child
	require.NoError(t, gdb.Where("registration_id = ?", reg.ID).Order("position asc").Find(&remaining).Error)
	require.Len(t, remaining, 2)
	assert.Equal(t, "A", remaining[0].Name)
	assert.Equal(t, 0, remaining[0].Position)
	assert.Equal(t, 0, remaining[0].DiscountCents)
	assert.Equal(t, "C", remaining[1].Name)
	assert.Equal(t, 1, remaining[1].Position)
	assert.Equal(t, 1000, remaining[1].DiscountCents)

	var got models.Registration
	require.NoError(t, gdb.First(&got, reg.ID).Error)
	assert.Equal(t, 79000, got.TotalAmountCents)
}

func TestRemoveChild_LastChildBlocked(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)
	reg := mustCreateRegistration(t, campInput(camp.ID, "Only"))

	var child models.Child
	require.NoError(t, gdb.Where("registration_id = ?", reg.ID).First(&child).Error)

	err := RemoveChild(child.ID)
	require.Error(t, err)
	assert.True(t, core.IsConstraint(err))

	// Registration and child row are unmodified.
	var stillThere int64
	gdb.Model(&models.Child{}).Where("id = ?", child.ID).Count(&stillThere)
	assert.EqualValues(t, 1, stillThere)
	var got models.Registration
	require.NoError(t, gdb.First(&got, reg.ID).Error)
	assert.Equal(t, 40000, got.TotalAmountCents)
}

func TestArchiveRestore(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)
	reg := mustCreateRegistration(t, campInput(camp.ID, "A"))

	require.NoError(t, Archive(reg.ID, "staff@littlenotes.org", "duplicate entry"))

	var got models.Registration
	require.NoError(t, gdb.First(&got, reg.ID).Error)
	assert.Equal(t, models.StatusArchived, got.Status)
	assert.NotNil(t, got.ArchivedAt)
	assert.Equal(t, "staff@littlenotes.org", got.ArchivedBy)

	// Child rows survive archival.
	var kids int64
	gdb.Model(&models.Child{}).Where("registration_id = ?", reg.ID).Count(&kids)
	assert.EqualValues(t, 1, kids)

	// Double-archive is refused.
	err := Archive(reg.ID, "staff@littlenotes.org", "")
	require.Error(t, err)
	assert.True(t, core.IsConstraint(err))

	// Restore only to the allowed set.
	err = Restore(reg.ID, models.StatusWaitlist)
	require.Error(t, err)
	assert.True(t, core.IsConstraint(err))

	require.NoError(t, Restore(reg.ID, models.StatusConfirmed))
	require.NoError(t, gdb.First(&got, reg.ID).Error)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Nil(t, got.ArchivedAt)

	// Restore requires archived.
	err = Restore(reg.ID, models.StatusPending)
	require.Error(t, err)
	assert.True(t, core.IsConstraint(err))
}

func TestDelete_RemovesDependents(t *testing.T) {
	gdb := openTestDB(t)
	ws, sessions := seedWorkshop(t, gdb, 1, 10)

	in := campInput(ws.ID, "A", "B")
	in.SessionIDs = []uint{sessions[0].ID}
	in.Pickups = []PickupInput{{Name: "Grandma", Relationship: "grandmother"}}
	reg := mustCreateRegistration(t, in)

	require.NoError(t, GenerateAttendance(sessions[0].ID))
	require.NoError(t, Delete(reg.ID))

	for _, m := range []any{&models.Registration{}, &models.Child{}, &models.AuthorizedPickup{}, &models.RegistrationSession{}} {
		var n int64
		gdb.Model(m).Count(&n)
		assert.EqualValues(t, 0, n)
	}
	var att int64
	gdb.Model(&models.AttendanceRecord{}).Count(&att)
	assert.EqualValues(t, 0, att)
}

func TestDeleteSession_BlockedByLiveRegistration(t *testing.T) {
	gdb := openTestDB(t)
	ws, sessions := seedWorkshop(t, gdb, 1, 10)

	in := campInput(ws.ID, "A")
	in.SessionIDs = []uint{sessions[0].ID}
	reg := mustCreateRegistration(t, in)
	require.NoError(t, SetStatus(reg.ID, models.StatusConfirmed, ""))

	err := DeleteSession(sessions[0].ID)
	require.Error(t, err)
	assert.True(t, core.IsConstraint(err))

	// Session and registration are untouched.
	var sess int64
	gdb.Model(&models.Session{}).Count(&sess)
	assert.EqualValues(t, 1, sess)

	// Cancelling the registration unblocks the delete.
	require.NoError(t, SetStatus(reg.ID, models.StatusCancelled, ""))
	require.NoError(t, DeleteSession(sessions[0].ID))
	gdb.Model(&models.Session{}).Count(&sess)
	assert.EqualValues(t, 0, sess)
}

func TestSetPaymentStatus(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)
	reg := mustCreateRegistration(t, campInput(camp.ID, "A"))

	require.NoError(t, SetPaymentStatus(reg.ID, models.PaymentPartial, 15000))

	var got models.Registration
	require.NoError(t, gdb.First(&got, reg.ID).Error)
	assert.Equal(t, models.PaymentPartial, got.PaymentStatus)
	assert.Equal(t, 15000, got.AmountPaidCents)

	// Waived leaves both money fields alone.
	require.NoError(t, SetPaymentStatus(reg.ID, models.PaymentWaived, 15000))
	require.NoError(t, gdb.First(&got, reg.ID).Error)
	assert.Equal(t, 40000, got.TotalAmountCents)
	assert.Equal(t, 15000, got.AmountPaidCents)

	err := SetPaymentStatus(reg.ID, "comped", 0)
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestCancelByCode(t *testing.T) {
	gdb := openTestDB(t)
	camp := seedCamp(t, gdb)
	reg := mustCreateRegistration(t, campInput(camp.ID, "A"))

	require.NoError(t, CancelByCode(reg.Code, "schedule conflict"))

	var got models.Registration
	require.NoError(t, gdb.First(&got, reg.ID).Error)
	assert.Equal(t, models.StatusCancelled, got.Status)

	// Idempotent on an already-cancelled registration.
	require.NoError(t, CancelByCode(reg.Code, ""))

	err := CancelByCode("REG-DOESNOTX", "")
	require.Error(t, err)
	assert.True(t, core.IsNotFound(err))
}

func TestGenerateRegCode_Format(t *testing.T) {
	gdb := openTestDB(t)
	code := generateRegCode(gdb)
	assert.Regexp(t, `^REG-[0-9A-F]{8}$`, code)
}
