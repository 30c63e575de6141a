package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wglickman33/mykosherdelivery-sub001/models"
)

func TestCheckSameStatusIsNoOp(t *testing.T) {
	for status := range models.CanonicalStatuses {
		changed, err := Check(status, status)
		require.NoError(t, err, "status %s", status)
		assert.False(t, changed, "status %s", status)
	}
}

func TestCheckTerminalStatesRefuseTransitions(t *testing.T) {
	for _, from := range []models.OrderStatus{models.OrderStatusDelivered, models.OrderStatusCancelled} {
		_, err := Check(from, models.OrderStatusConfirmed)
		var ite *InvalidTransitionError
		require.ErrorAs(t, err, &ite, "from %s", from)
	}
}

func TestCheckRejectsUnknownStatus(t *testing.T) {
	_, err := Check(models.OrderStatusPending, models.OrderStatus("shipped"))
	var ite *InvalidTransitionError
	require.ErrorAs(t, err, &ite)
}

func TestCheckCancelledReachableFromAnyNonTerminal(t *testing.T) {
	for _, from := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusPreparing,
		models.OrderStatusOutForDelivery,
	} {
		changed, err := Check(from, models.OrderStatusCancelled)
		require.NoError(t, err, "from %s", from)
		assert.True(t, changed)
	}
}

func TestAuthorizeStaffMaySetAnything(t *testing.T) {
	for _, role := range []models.Role{models.RoleStaff, models.RoleAdmin} {
		err := Authorize(role, models.OrderStatusOutForDelivery, models.OrderStatusPending)
		assert.NoError(t, err, "role %s", role)
	}
}

func TestAuthorizeCustomerCancelRules(t *testing.T) {
	// Allowed: cancel while pending or confirmed.
	require.NoError(t, Authorize(models.RoleCustomer, models.OrderStatusPending, models.OrderStatusCancelled))
	require.NoError(t, Authorize(models.RoleCustomer, models.OrderStatusConfirmed, models.OrderStatusCancelled))

	// Not allowed: any non-cancel target.
	var ite *InvalidTransitionError
	err := Authorize(models.RoleCustomer, models.OrderStatusPending, models.OrderStatusDelivered)
	require.ErrorAs(t, err, &ite)

	// Not allowed: cancel once preparation started.
	err = Authorize(models.RoleCustomer, models.OrderStatusPreparing, models.OrderStatusCancelled)
	require.ErrorAs(t, err, &ite)
}
