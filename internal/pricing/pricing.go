// Package pricing computes per-child prices and registration totals.
//
// The sibling discount is positional: it depends on the child's zero-based
// index within the registration's child list at the time the discount is
// computed, not on any stored sibling flag. Every call site that mutates a
// registration's child list must reprice through this package so the
// recompute-on-reorder rule lives in exactly one place.
package pricing

import "github.com/littlenotes/encore/internal/models"

// Discount returns the sibling discount for the child at the given zero-based
// index: min(index × siblingDiscountCents, maxDiscountCents).
func Discount(index, siblingDiscountCents, maxDiscountCents int) int {
	d := index * siblingDiscountCents
	if d > maxDiscountCents {
		d = maxDiscountCents
	}
	if d < 0 {
		d = 0
	}
	return d
}

// ChildPrice returns the price for the child at the given zero-based index.
// The first child (index 0) pays full price; the discount never drives the
// price below zero.
func ChildPrice(index, basePriceCents, siblingDiscountCents, maxDiscountCents int) int {
	p := basePriceCents - Discount(index, siblingDiscountCents, maxDiscountCents)
	if p < 0 {
		p = 0
	}
	return p
}

// RegistrationTotal sums ChildPrice over the children in their stored order
// and multiplies by sessionCount for multi-session workshop registrations
// (each session is billed independently at the full per-child schedule).
// Camp registrations pass sessionCount 1.
func RegistrationTotal(children []models.Child, program models.Program, sessionCount int) int {
	if sessionCount < 1 {
		sessionCount = 1
	}
	sum := 0
	for i := range children {
		sum += ChildPrice(i, program.BasePriceCents, program.SiblingDiscountCents, program.MaxDiscountCents)
	}
	return sum * sessionCount
}

// OutstandingCents is the balance shown to staff: waived registrations read
// as paid in full without mutating the recorded payment amount, and a
// recorded overpayment clamps at zero rather than going negative.
func OutstandingCents(reg models.Registration) int {
	if reg.PaymentStatus == models.PaymentWaived {
		return 0
	}
	out := reg.TotalAmountCents - reg.AmountPaidCents
	if out < 0 {
		out = 0
	}
	return out
}
