package models

import "time"

// Program type: "workshop" | "camp"
type Program struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Type string `gorm:"index;not null"` // workshop | camp
	Name string `gorm:"not null"`

	BasePriceCents       int // per child; per session for workshops
	SiblingDiscountCents int // per additional child
	MaxDiscountCents     int // cap on total discount per child

	Active bool `gorm:"default:true"`

	Sessions []Session
}

// Session is one dated meeting of a workshop program.
type Session struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ProgramID uint `gorm:"index"`
	Program   Program

	Date     time.Time
	Location string
	Capacity int
}

// Registration status: "pending", "confirmed", "waitlist" (workshop only),
// "cancelled", "archived".
// Payment status: "unpaid", "paid", "partial", "waived", independent of
// registration status.
type Registration struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ProgramID   uint `gorm:"index"`
	Program     Program
	ProgramType string // denormalized copy of Program.Type

	AccountID *uint `gorm:"index"` // nil until a parent creates/links an account

	ContactName  string
	ContactEmail string `gorm:"index"`
	ContactPhone string

	Status        string `gorm:"index;default:pending"`
	PaymentStatus string `gorm:"default:unpaid"`

	TotalAmountCents int
	AmountPaidCents  int

	// Consents, each paired with its acceptance timestamp.
	TermsAccepted      bool
	TermsAcceptedAt    *time.Time
	WaiverAccepted     bool
	WaiverAcceptedAt   *time.Time
	BehaviorAccepted   bool // camp only
	BehaviorAcceptedAt *time.Time
	MediaInternalOK    bool
	MediaInternalAt    *time.Time
	MediaMarketingOK   bool
	MediaMarketingAt   *time.Time

	CancelledAt  *time.Time
	CancelReason string

	ArchivedAt    *time.Time
	ArchiveReason string
	ArchivedBy    string

	Code string `gorm:"uniqueIndex"` // e.g., REG-7F3A21BC, printed on the QR ticket

	Children []Child
	Pickups  []AuthorizedPickup
	Sessions []RegistrationSession
}

// RegistrationSession links a workshop registration to the sessions it
// selected. The row count is the billing multiplier.
type RegistrationSession struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	RegistrationID uint `gorm:"index:idx_regsession,unique"`
	SessionID      uint `gorm:"index:idx_regsession,unique;index"`
}

// Child is a point-in-time copy inside one registration; AccountChildID links
// back to the reusable profile it was copied from, if any.
type Child struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	RegistrationID uint `gorm:"index"`
	AccountChildID *uint

	Name   string `gorm:"not null"`
	Age    int
	School string

	Allergies           string
	DietaryRestrictions string
	MedicalConditions   string
	SpecialNeeds        string // camp only
	TShirtSize          string // camp only

	// Position is the zero-based index within the registration's child list.
	// DiscountCents is derived from it and recomputed on any list change.
	Position      int
	DiscountCents int
}

// AccountChild is a reusable child profile owned by an account. Registrations
// copy it, they never reference it live.
type AccountChild struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	AccountID uint `gorm:"index"`

	Name      string
	BirthDate time.Time
	School    string
}

type Account struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name  string
	Email string `gorm:"uniqueIndex;not null"`
	Phone string

	Children []AccountChild
}

type AuthorizedPickup struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	RegistrationID uint `gorm:"index"`

	Name         string `gorm:"not null"`
	Phone        string
	Relationship string
}

// AttendanceRecord status: "expected", "checked_in", "no_show", "cancelled".
// Exactly one row per (session, child), created lazily by the attendance view.
type AttendanceRecord struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	SessionID uint `gorm:"index:idx_attendance,unique"`
	ChildID   uint `gorm:"index:idx_attendance,unique"`

	Status      string `gorm:"default:expected"`
	CheckedInBy string
	CheckedInAt *time.Time
}

// MagicLinkToken is a single-use 24h credential; valid iff UsedAt is nil and
// now is before ExpiresAt. Validation consumes it.
type MagicLinkToken struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	Token     string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"index;not null"`
	ExpiresAt time.Time
	UsedAt    *time.Time
}
