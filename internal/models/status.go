package models

// Registration statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusWaitlist  = "waitlist" // workshop only
	StatusCancelled = "cancelled"
	StatusArchived  = "archived"
)

// Payment statuses.
const (
	PaymentUnpaid  = "unpaid"
	PaymentPaid    = "paid"
	PaymentPartial = "partial"
	PaymentWaived  = "waived"
)

// Attendance statuses.
const (
	AttendanceExpected  = "expected"
	AttendanceCheckedIn = "checked_in"
	AttendanceNoShow    = "no_show"
	AttendanceCancelled = "cancelled"
)

// Program types.
const (
	ProgramWorkshop = "workshop"
	ProgramCamp     = "camp"
)

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentUnpaid, PaymentPaid, PaymentPartial, PaymentWaived:
		return true
	}
	return false
}
