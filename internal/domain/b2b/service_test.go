package b2b

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byUser    map[string]*Customer
	created   *Customer
	createErr error
	approved  *Customer
}

func (m *mockRepo) Create(_ context.Context, c *Customer) error {
	if m.createErr != nil {
		return m.createErr
	}
	c.ID = 1
	m.created = c
	return nil
}

func (m *mockRepo) GetByUser(_ context.Context, userID string) (*Customer, error) {
	c, ok := m.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Customer, error) {
	for _, c := range m.byUser {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Approve(_ context.Context, id int64, tier decimal.Decimal) (*Customer, error) {
	for _, c := range m.byUser {
		if c.ID == id {
			c.ApprovalStatus = StatusApproved
			c.DiscountTier = tier
			m.approved = c
			return c, nil
		}
	}
	return nil, ErrNotFound
}

func TestRegister(t *testing.T) {
	repo := &mockRepo{byUser: map[string]*Customer{}}
	svc := NewService(repo)

	c, err := svc.Register(context.Background(), "u1", "Jora Traders", "29ABCDE1234F1Z5")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, c.ApprovalStatus)
	assert.Equal(t, "Jora Traders", c.BusinessName)
	assert.Equal(t, "29ABCDE1234F1Z5", c.GSTNumber)
	require.NotNil(t, repo.created)
}

func TestRegister_Twice(t *testing.T) {
	repo := &mockRepo{byUser: map[string]*Customer{
		"u1": {ID: 1, UserID: "u1", ApprovalStatus: StatusPending},
	}}
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), "u1", "Jora Traders", "29ABCDE1234F1Z5")
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestApprove(t *testing.T) {
	repo := &mockRepo{byUser: map[string]*Customer{
		"u1": {ID: 7, UserID: "u1", ApprovalStatus: StatusPending},
	}}
	svc := NewService(repo)

	c, err := svc.Approve(context.Background(), 7, decimal.NewFromInt(15))
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, c.ApprovalStatus)
	assert.Equal(t, "15", c.DiscountTier.String())
}

func TestApprove_NegativeTier(t *testing.T) {
	svc := NewService(&mockRepo{byUser: map[string]*Customer{}})

	_, err := svc.Approve(context.Background(), 1, decimal.NewFromInt(-5))
	require.Error(t, err)
}

func TestApprove_NotFound(t *testing.T) {
	svc := NewService(&mockRepo{byUser: map[string]*Customer{}})

	_, err := svc.Approve(context.Background(), 42, decimal.NewFromInt(10))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestProfile(t *testing.T) {
	repo := &mockRepo{byUser: map[string]*Customer{
		"u1": {ID: 1, UserID: "u1", BusinessName: "Jora Traders"},
	}}
	svc := NewService(repo)

	c, err := svc.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Jora Traders", c.BusinessName)

	_, err = svc.Profile(context.Background(), "u2")
	require.ErrorIs(t, err, ErrNotFound)
}
