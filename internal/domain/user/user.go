package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Role determines which API surfaces a user may reach.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleB2B      Role = "b2b"
	RoleAdmin    Role = "admin"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("email already registered")
)

// User is a registered account. PasswordHash holds a bcrypt digest; the
// plaintext never leaves the auth layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Role         Role
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateRole(ctx context.Context, id string, role Role) error
}
