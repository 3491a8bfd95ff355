package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/restaurant-floor-api/middleware"
	"github.com/kendall-kelly/restaurant-floor-api/models"
	"github.com/kendall-kelly/restaurant-floor-api/services"
)

// statusByCode maps service error codes onto HTTP statuses
var statusByCode = map[string]int{
	services.CodeNotFound:               http.StatusNotFound,
	services.CodeForbidden:              http.StatusForbidden,
	services.CodeValidation:             http.StatusBadRequest,
	services.CodeInsufficientStock:      http.StatusConflict,
	services.CodeTableOwnershipConflict: http.StatusConflict,
	services.CodeInvalidState:           http.StatusConflict,
	services.CodePrintFailed:            http.StatusBadGateway,
}

// respondError writes the error body for err
func respondError(c *gin.Context, err error) {
	code := services.ErrorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		slog.Error("request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "An unexpected error occurred",
			},
		})
		return
	}

	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}

// respondPartial reports a failure that happened after the state change
// committed, so the committed result is returned alongside the error
func respondPartial(c *gin.Context, err error, data interface{}) {
	c.JSON(statusByCode[services.ErrorCode(err)], gin.H{
		"success": false,
		"error": gin.H{
			"code":    services.ErrorCode(err),
			"message": err.Error(),
		},
		"data": data,
	})
}

func respondValidation(c *gin.Context, message string, err error) {
	body := gin.H{
		"code":    services.CodeValidation,
		"message": message,
	}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   body,
	})
}

// currentWorker resolves the token subject to a worker. It writes the error
// response and returns false when the caller cannot be identified.
func currentWorker(c *gin.Context) (*models.Worker, bool) {
	subject, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	worker, err := services.GetFloorService().WorkerBySubject(c.Request.Context(), subject)
	if err != nil {
		if services.IsCode(err, services.CodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "WORKER_NOT_FOUND",
					"message": "Worker profile not found",
				},
			})
			return nil, false
		}
		respondError(c, err)
		return nil, false
	}

	// a role claim, when present, must agree with the stored profile
	if role := middleware.GetRole(c); role != "" && role != worker.Role {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ROLE_MISMATCH",
				"message": "Token role does not match the worker profile",
			},
		})
		return nil, false
	}

	return worker, true
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		respondValidation(c, "Invalid "+param, nil)
		return 0, false
	}
	return uint(id), true
}
