package b2b

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Service handles the B2B customer-approval workflow.
type Service struct {
	customers Repository
}

// NewService creates a B2B Service.
func NewService(customers Repository) *Service {
	return &Service{customers: customers}
}

// Register files a new B2B application for the user. A user may hold at most
// one profile.
func (s *Service) Register(ctx context.Context, userID, businessName, gstNumber string) (*Customer, error) {
	existing, err := s.customers.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check existing profile")
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	c := &Customer{
		UserID:         userID,
		BusinessName:   businessName,
		GSTNumber:      gstNumber,
		ApprovalStatus: StatusPending,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create b2b profile")
	}
	return c, nil
}

// Profile returns the user's own B2B profile.
func (s *Service) Profile(ctx context.Context, userID string) (*Customer, error) {
	return s.customers.GetByUser(ctx, userID)
}

// Approve accepts an application and sets its discount tier. The owning
// user's role is upgraded to b2b in the same transaction.
func (s *Service) Approve(ctx context.Context, id int64, discountTier decimal.Decimal) (*Customer, error) {
	if discountTier.IsNegative() {
		return nil, errors.New("discount tier must not be negative")
	}
	return s.customers.Approve(ctx, id, discountTier)
}
