package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-floor-api/services"
)

// PrintReceiptRequest represents the request body for an ad-hoc receipt.
// A zero total is computed from current dish prices.
type PrintReceiptRequest struct {
	Items []services.OrderLine `json:"items" binding:"required,min=1,dive"`
	Total int64                `json:"total" binding:"gte=0"`
}

// PrintReceipt handles POST /api/v1/receipts/print
func PrintReceipt(c *gin.Context) {
	worker, ok := currentWorker(c)
	if !ok {
		return
	}

	var req PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request data", err)
		return
	}

	receipt, err := services.GetFloorService().PrintReceipt(c.Request.Context(), worker, req.Items, req.Total)
	if services.IsCode(err, services.CodePrintFailed) {
		respondPartial(c, err, receipt)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    receipt,
	})
}
