package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joralabs/jora-api/internal/domain/user"
)

const addressColumns = `id, user_id, type, address_line1, address_line2, city, state,
	pincode, country, is_default`

var _ user.AddressRepository = (*AddressRepository)(nil)

// AddressRepository implements user.AddressRepository backed by PostgreSQL.
type AddressRepository struct {
	pool *pgxpool.Pool
}

// NewAddressRepository returns an AddressRepository that uses the given pool.
func NewAddressRepository(pool *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// Create persists a new address and fills in its generated ID. Marking an
// address default clears the flag from the user's other addresses of the
// same type.
func (r *AddressRepository) Create(ctx context.Context, a *user.Address) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if a.IsDefault {
			_, err := tx.Exec(ctx, `UPDATE addresses SET is_default = FALSE
				WHERE user_id = $1 AND type = $2`, a.UserID, a.Type)
			if err != nil {
				return fmt.Errorf("clearing default addresses: %w", err)
			}
		}

		err := tx.QueryRow(ctx, `INSERT INTO addresses
			(user_id, type, address_line1, address_line2, city, state, pincode, country, is_default)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
			a.UserID, a.Type, a.AddressLine1, a.AddressLine2, a.City, a.State,
			a.Pincode, a.Country, a.IsDefault,
		).Scan(&a.ID)
		if err != nil {
			return fmt.Errorf("creating address: %w", err)
		}
		return nil
	})
}

// ListByUser returns all of the user's addresses.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]user.Address, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing addresses for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanAddress)
}

// Get returns one address scoped to its owner.
func (r *AddressRepository) Get(ctx context.Context, id int64, userID string) (*user.Address, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("getting address %d: %w", id, err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanAddress)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrAddressNotFound
		}
		return nil, fmt.Errorf("getting address %d: %w", id, err)
	}
	return &a, nil
}

func scanAddress(row pgx.CollectableRow) (user.Address, error) {
	var a user.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.Type, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.Pincode, &a.Country, &a.IsDefault,
	)
	return a, err
}
