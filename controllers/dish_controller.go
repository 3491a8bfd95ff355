package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-floor-api/services"
)

// SetDishQuantityRequest represents the request body for restocking a dish
type SetDishQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

// ListDishes handles GET /api/v1/chef/dishes (chefs only)
func ListDishes(c *gin.Context) {
	worker, ok := currentWorker(c)
	if !ok {
		return
	}

	dishes, err := services.GetFloorService().ListDishes(c.Request.Context(), worker)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dishes,
		"count":   len(dishes),
	})
}

// SetDishQuantity handles PUT /api/v1/chef/dishes/:id/quantity (chefs only)
func SetDishQuantity(c *gin.Context) {
	worker, ok := currentWorker(c)
	if !ok {
		return
	}
	dishID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req SetDishQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Invalid request data", err)
		return
	}

	dish, err := services.GetFloorService().SetDishQuantity(c.Request.Context(), worker, dishID, *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dish,
	})
}
