package controllers

import (
	"errors"
	"net/http"

	"fund-ledger-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondServiceError maps the workflow error taxonomy onto HTTP statuses.
// Conflict errors (duplicate approvals, repeated decisions) come back 409 so
// callers know not to retry them automatically.
func respondServiceError(c *gin.Context, err error) {
	if ve, ok := services.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"code":    "VALIDATION_ERROR",
			"error":   ve.Error(),
			"fields":  ve.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "code": "NOT_FOUND", "error": "Record not found"})
	case errors.Is(err, services.ErrInvalidOwnerState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "code": "INVALID_OWNER_STATE", "error": err.Error()})
	case errors.Is(err, services.ErrDuplicateApprovedRequest):
		c.JSON(http.StatusConflict, gin.H{"success": false, "code": "DUPLICATE_APPROVED_REQUEST", "error": err.Error()})
	case errors.Is(err, services.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, gin.H{"success": false, "code": "ALREADY_DECIDED", "error": err.Error()})
	case errors.Is(err, services.ErrRequestNotPending):
		c.JSON(http.StatusConflict, gin.H{"success": false, "code": "REQUEST_NOT_PENDING", "error": err.Error()})
	case errors.Is(err, services.ErrRequestNotApproved):
		c.JSON(http.StatusConflict, gin.H{"success": false, "code": "REQUEST_NOT_APPROVED", "error": err.Error()})
	case errors.Is(err, services.ErrDuplicateQuota):
		c.JSON(http.StatusConflict, gin.H{"success": false, "code": "DUPLICATE_QUOTA", "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}
