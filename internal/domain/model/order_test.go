package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_ConfirmTwiceKeepsTimestamp(t *testing.T) {
	o := Order{Status: OrderStatusPending}
	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	changed, err := o.Confirm(t1)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, o.ConfirmedAt)
	assert.Equal(t, t1, *o.ConfirmedAt)

	changed, err = o.Confirm(t1.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, t1, *o.ConfirmedAt)
	assert.Equal(t, OrderStatusConfirmed, o.Status)
}

func TestOrder_RejectSetsRejectedAtOnce(t *testing.T) {
	o := Order{Status: OrderStatusPending}
	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	changed, err := o.Reject(t1)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = o.Reject(t1.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, t1, *o.RejectedAt)
	assert.Nil(t, o.ConfirmedAt)
}

func TestOrder_CrossTransitionRefused(t *testing.T) {
	now := time.Now()

	confirmed := Order{Status: OrderStatusPending}
	_, _ = confirmed.Confirm(now)
	_, err := confirmed.Reject(now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Nil(t, confirmed.RejectedAt)

	rejected := Order{Status: OrderStatusPending}
	_, _ = rejected.Reject(now)
	_, err = rejected.Confirm(now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Nil(t, rejected.ConfirmedAt)
}

func TestOrderItem_Subtotal(t *testing.T) {
	it := OrderItem{
		Quantity: 2,
		Product:  Product{Price: decimal.NewFromInt(100000)},
	}
	assert.True(t, decimal.NewFromInt(200000).Equal(it.Subtotal()))
}

func TestProduct_HasSize(t *testing.T) {
	p := Product{Sizes: []Size{{ID: 1, Label: "S"}, {ID: 2, Label: "M"}}}
	assert.True(t, p.HasSize(2))
	assert.False(t, p.HasSize(3))
}

func TestUser_CanManageOrders(t *testing.T) {
	u := User{Role: RoleAdmin, IsActive: true}
	assert.True(t, u.CanManageOrders())

	u.IsActive = false
	assert.False(t, u.CanManageOrders())

	u = User{Role: Role("STAFF"), IsActive: true}
	assert.False(t, u.CanManageOrders())

	u.RevokeTokens()
	assert.Equal(t, 1, u.TokenVersion)
}
