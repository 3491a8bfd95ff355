package services

import (
	"github.com/kendall-kelly/restaurant-floor-api/models"
)

// Operation names a guarded floor operation
type Operation string

const (
	OpCreateOrder     Operation = "create_order"
	OpCloseOrder      Operation = "close_order"
	OpSettleTable     Operation = "settle_table"
	OpRestockDish     Operation = "restock_dish"
	OpListDishes      Operation = "list_dishes"
	OpListOpenOrders  Operation = "list_open_orders"
	OpListTableOrders Operation = "list_table_orders"
	OpViewOrder       Operation = "view_order"
	OpPrintReceipt    Operation = "print_receipt"
)

var allRoles = []string{models.RoleAdmin, models.RoleWaiter, models.RoleChef}

// policy lists the roles allowed to run each operation
var policy = map[Operation][]string{
	OpCreateOrder:     {models.RoleWaiter},
	OpCloseOrder:      {models.RoleAdmin, models.RoleWaiter},
	OpSettleTable:     {models.RoleAdmin},
	OpRestockDish:     {models.RoleChef},
	OpListDishes:      {models.RoleChef},
	OpListOpenOrders:  allRoles,
	OpListTableOrders: {models.RoleWaiter},
	OpViewOrder:       allRoles,
	OpPrintReceipt:    {models.RoleAdmin, models.RoleWaiter},
}

// Allowed reports whether role may run op. Unknown operations are denied.
func Allowed(role string, op Operation) bool {
	for _, r := range policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize returns a FORBIDDEN error unless worker may run op
func Authorize(worker *models.Worker, op Operation) error {
	if worker == nil {
		return newError(CodeForbidden, "no worker identity for %s", op)
	}
	if !Allowed(worker.Role, op) {
		return newError(CodeForbidden, "role %s may not %s", worker.Role, op)
	}
	return nil
}
