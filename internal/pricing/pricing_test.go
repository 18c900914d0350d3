package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/littlenotes/encore/internal/models"
)

func TestChildPrice_Camp(t *testing.T) {
	// Base $400, sibling discount $10, cap $30: prices step down and flatten
	// once the cap is hit.
	want := []int{40000, 39000, 38000, 37000, 37000}
	for i, w := range want {
		assert.Equal(t, w, ChildPrice(i, 40000, 1000, 3000), "child %d", i)
	}
}

func TestChildPrice_NeverNegative(t *testing.T) {
	// Discount bigger than the base price floors at zero.
	assert.Equal(t, 0, ChildPrice(5, 2000, 1000, 100000))
	assert.Equal(t, 0, ChildPrice(1, 0, 500, 500))
}

func TestChildPrice_Monotonic(t *testing.T) {
	prev := ChildPrice(0, 40000, 1000, 3000)
	for i := 1; i < 50; i++ {
		p := ChildPrice(i, 40000, 1000, 3000)
		assert.LessOrEqual(t, p, prev, "price increased at index %d", i)
		assert.GreaterOrEqual(t, p, 0)
		prev = p
	}
}

func TestChildPrice_CapStabilizes(t *testing.T) {
	// Once i × sibling ≥ cap, every later child pays base − cap.
	capped := ChildPrice(3, 40000, 1000, 3000)
	for i := 4; i < 20; i++ {
		assert.Equal(t, capped, ChildPrice(i, 40000, 1000, 3000))
	}
	assert.Equal(t, 40000-3000, capped)
}

func TestRegistrationTotal_Camp(t *testing.T) {
	program := models.Program{
		Type:                 models.ProgramCamp,
		BasePriceCents:       40000,
		SiblingDiscountCents: 1000,
		MaxDiscountCents:     3000,
	}
	children := make([]models.Child, 5)

	total := RegistrationTotal(children, program, 1)
	assert.Equal(t, 191000, total) // $1,910.00

	// Pure function: calling again on the unchanged list yields the same value.
	assert.Equal(t, total, RegistrationTotal(children, program, 1))
}

func TestRegistrationTotal_WorkshopSessions(t *testing.T) {
	// $75/session, 2 children, 3 sessions: (75 + 65) × 3 = $420.
	program := models.Program{
		Type:                 models.ProgramWorkshop,
		BasePriceCents:       7500,
		SiblingDiscountCents: 1000,
		MaxDiscountCents:     3000,
	}
	children := make([]models.Child, 2)

	assert.Equal(t, 42000, RegistrationTotal(children, program, 3))
}

func TestRegistrationTotal_ZeroChildren(t *testing.T) {
	program := models.Program{BasePriceCents: 40000}
	assert.Equal(t, 0, RegistrationTotal(nil, program, 1))
}

func TestRegistrationTotal_SessionCountFloor(t *testing.T) {
	program := models.Program{BasePriceCents: 7500}
	children := make([]models.Child, 1)
	assert.Equal(t, 7500, RegistrationTotal(children, program, 0))
}

func TestOutstandingCents(t *testing.T) {
	reg := models.Registration{TotalAmountCents: 40000, AmountPaidCents: 15000, PaymentStatus: models.PaymentPartial}
	assert.Equal(t, 25000, OutstandingCents(reg))

	// Waived reads as paid in full; the recorded amount is untouched.
	reg.PaymentStatus = models.PaymentWaived
	assert.Equal(t, 0, OutstandingCents(reg))
	assert.Equal(t, 15000, reg.AmountPaidCents)

	// Overpayment clamps at zero.
	reg.PaymentStatus = models.PaymentPaid
	reg.AmountPaidCents = 45000
	assert.Equal(t, 0, OutstandingCents(reg))
}
