package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/joralabs/jora-api/internal/domain/b2b"
	"github.com/joralabs/jora-api/internal/domain/user"
)

const b2bColumns = `id, user_id, business_name, COALESCE(gst_number, ''), approval_status,
	discount_tier, moq_requirement, credit_limit`

var _ b2b.Repository = (*B2BRepository)(nil)

// B2BRepository implements b2b.Repository backed by PostgreSQL.
type B2BRepository struct {
	pool *pgxpool.Pool
}

// NewB2BRepository returns a B2BRepository that uses the given pool.
func NewB2BRepository(pool *pgxpool.Pool) *B2BRepository {
	return &B2BRepository{pool: pool}
}

// Create persists a new B2B application and fills in its generated ID.
func (r *B2BRepository) Create(ctx context.Context, c *b2b.Customer) error {
	var gst *string
	if c.GSTNumber != "" {
		gst = &c.GSTNumber
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO b2b_customers
		(user_id, business_name, gst_number)
		VALUES ($1, $2, $3) RETURNING id, approval_status, discount_tier, moq_requirement`,
		c.UserID, c.BusinessName, gst,
	).Scan(&c.ID, &c.ApprovalStatus, &c.DiscountTier, &c.MOQRequirement)
	if err != nil {
		switch {
		case uniqueViolation(err, "b2b_customers_user_id_key"):
			return b2b.ErrAlreadyRegistered
		case uniqueViolation(err, "b2b_customers_gst_number_key"):
			return b2b.ErrGSTTaken
		}
		return fmt.Errorf("creating b2b profile for user %q: %w", c.UserID, err)
	}
	return nil
}

// GetByUser returns the B2B profile owned by the given user.
func (r *B2BRepository) GetByUser(ctx context.Context, userID string) (*b2b.Customer, error) {
	return r.getOne(ctx, `SELECT `+b2bColumns+` FROM b2b_customers WHERE user_id = $1`, userID)
}

// GetByID returns a B2B profile by its ID.
func (r *B2BRepository) GetByID(ctx context.Context, id int64) (*b2b.Customer, error) {
	return r.getOne(ctx, `SELECT `+b2bColumns+` FROM b2b_customers WHERE id = $1`, id)
}

// Approve marks the customer approved with the given discount tier and
// upgrades the owning user's role to b2b, atomically.
func (r *B2BRepository) Approve(ctx context.Context, id int64, discountTier decimal.Decimal) (*b2b.Customer, error) {
	var c *b2b.Customer
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		var userID string
		err := tx.QueryRow(ctx, `UPDATE b2b_customers
			SET approval_status = 'approved', discount_tier = $2
			WHERE id = $1 RETURNING user_id`, id, discountTier).Scan(&userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return b2b.ErrNotFound
			}
			return fmt.Errorf("approving b2b customer %d: %w", id, err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE users SET role = $2, updated_at = now() WHERE id = $1`,
			userID, user.RoleB2B,
		); err != nil {
			return fmt.Errorf("upgrading role of user %q: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c, err = r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *B2BRepository) getOne(ctx context.Context, sql string, arg any) (*b2b.Customer, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting b2b profile: %w", err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanB2B)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, b2b.ErrNotFound
		}
		return nil, fmt.Errorf("getting b2b profile: %w", err)
	}
	return &c, nil
}

func scanB2B(row pgx.CollectableRow) (b2b.Customer, error) {
	var c b2b.Customer
	err := row.Scan(
		&c.ID, &c.UserID, &c.BusinessName, &c.GSTNumber, &c.ApprovalStatus,
		&c.DiscountTier, &c.MOQRequirement, &c.CreditLimit,
	)
	return c, err
}
