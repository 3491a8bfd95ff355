package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-floor-api/services"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	TableID uint                 `json:"table_id" binding:"required"`
	Items   []services.OrderLine `json:"items" binding:"required,min=1,dive"`
}

// CreateOrder handles POST /api/v1/orders - reserves stock and places an order (waiters only)
func CreateOrder(c *gin.Context) {
	worker, ok := currentWorker(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request data", err)
		return
	}

	result, err := services.GetFloorService().CreateOrder(c.Request.Context(), worker, services.CreateOrderInput{
		TableID: req.TableID,
		Items:   req.Items,
	})
	if services.IsCode(err, services.CodePrintFailed) {
		respondPartial(c, err, result)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}

// CloseOrder handles POST /api/v1/orders/:id/close - closes one order and prints its receipt
func CloseOrder(c *gin.Context) {
	worker, ok := currentWorker(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := services.GetFloorService().CloseOrder(c.Request.Context(), worker, orderID)
	if services.IsCode(err, services.CodePrintFailed) {
		respondPartial(c, err, result)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// ListOpenOrders handles GET /api/v1/orders/open
func ListOpenOrders(c *gin.Context) {
	worker, ok := currentWorker(c)
	if !ok {
		return
	}

	orders, err := services.GetFloorService().ListOpenOrders(c.Request.Context(), worker)
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

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	worker, ok := currentWorker(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := services.GetFloorService().GetOrder(c.Request.Context(), worker, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
