package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetMe handles GET /api/v1/me - returns the calling worker's profile
func GetMe(c *gin.Context) {
	worker, ok := currentWorker(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    worker,
	})
}
