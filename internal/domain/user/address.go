package user

import (
	"context"

	"github.com/go-faster/errors"
)

// AddressType distinguishes shipping from billing addresses.
type AddressType string

const (
	AddressShipping AddressType = "shipping"
	AddressBilling  AddressType = "billing"
)

// ErrAddressNotFound is returned when an address does not exist or belongs
// to another user.
var ErrAddressNotFound = errors.New("address not found")

// Address is a delivery or billing address owned by a user.
type Address struct {
	ID           int64
	UserID       string
	Type         AddressType
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Pincode      string
	Country      string
	IsDefault    bool
}

// AddressRepository defines persistence operations for addresses.
type AddressRepository interface {
	Create(ctx context.Context, a *Address) error
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	Get(ctx context.Context, id int64, userID string) (*Address, error)
}
