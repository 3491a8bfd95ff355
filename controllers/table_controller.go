package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-floor-api/services"
)

// ListTableOrders handles GET /api/v1/tables/:id/orders - the calling waiter's open orders on a table
func ListTableOrders(c *gin.Context) {
	worker, ok := currentWorker(c)
	if !ok {
		return
	}
	tableID, ok := parseID(c, "id")
	if !ok {
		return
	}

	orders, err := services.GetFloorService().ListTableOrders(c.Request.Context(), worker, tableID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
		"count":   len(orders),
	})
}

// SettleTable handles POST /api/v1/tables/:id/bill - closes every open order on the table (admins only)
func SettleTable(c *gin.Context) {
	worker, ok := currentWorker(c)
	if !ok {
		return
	}
	tableID, ok := parseID(c, "id")
	if !ok {
		return
	}

	bill, err := services.GetFloorService().SettleTable(c.Request.Context(), worker, tableID)
	if services.IsCode(err, services.CodePrintFailed) {
		respondPartial(c, err, bill)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    bill,
	})
}
