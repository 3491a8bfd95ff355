package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kendall-kelly/restaurant-floor-api/models"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		op     Operation
		admin  bool
		waiter bool
		chef   bool
	}{
		{OpCreateOrder, false, true, false},
		{OpCloseOrder, true, true, false},
		{OpSettleTable, true, false, false},
		{OpRestockDish, false, false, true},
		{OpListDishes, false, false, true},
		{OpListOpenOrders, true, true, true},
		{OpListTableOrders, false, true, false},
		{OpViewOrder, true, true, true},
		{OpPrintReceipt, true, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.admin, Allowed(models.RoleAdmin, tt.op), "admin")
			assert.Equal(t, tt.waiter, Allowed(models.RoleWaiter, tt.op), "waiter")
			assert.Equal(t, tt.chef, Allowed(models.RoleChef, tt.op), "chef")
		})
	}
}

func TestAllowedUnknown(t *testing.T) {
	assert.False(t, Allowed("customer", OpListOpenOrders))
	assert.False(t, Allowed(models.RoleAdmin, Operation("drop_tables")))
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(&models.Worker{Role: models.RoleWaiter}, OpCreateOrder))

	err := Authorize(&models.Worker{Role: models.RoleChef}, OpCreateOrder)
	assert.Equal(t, CodeForbidden, ErrorCode(err))
	assert.Contains(t, err.Error(), "chef")

	assert.Equal(t, CodeForbidden, ErrorCode(Authorize(nil, OpViewOrder)))
}

func TestServiceError(t *testing.T) {
	cause := errors.New("printer unreachable")
	err := &ServiceError{Code: CodePrintFailed, Message: "receipt did not print", Err: cause}

	assert.Equal(t, "receipt did not print: printer unreachable", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("closing order: %w", err)
	assert.Equal(t, CodePrintFailed, ErrorCode(wrapped))
	assert.True(t, IsCode(wrapped, CodePrintFailed))
	assert.Equal(t, "", ErrorCode(cause))

	assert.Equal(t, "order 3 not found", notFound("order %d not found", 3).Error())
}
