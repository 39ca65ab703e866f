package b2b

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ApprovalStatus tracks where a B2B application stands.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

var (
	// ErrNotFound is returned when no B2B profile matches the lookup.
	ErrNotFound = errors.New("b2b profile not found")
	// ErrAlreadyRegistered is returned when a user applies twice.
	ErrAlreadyRegistered = errors.New("already registered as b2b customer")
	// ErrGSTTaken is returned when the GST number is already registered.
	ErrGSTTaken = errors.New("gst number already registered")
)

// Customer is a business account application with its negotiated terms.
type Customer struct {
	ID             int64
	UserID         string
	BusinessName   string
	GSTNumber      string
	ApprovalStatus ApprovalStatus
	DiscountTier   decimal.Decimal
	MOQRequirement int
	CreditLimit    *decimal.Decimal
}

// Repository defines persistence operations for B2B customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByUser(ctx context.Context, userID string) (*Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	// Approve marks the customer approved with the given discount tier and
	// upgrades the owning user's role to b2b, atomically.
	Approve(ctx context.Context, id int64, discountTier decimal.Decimal) (*Customer, error)
}
