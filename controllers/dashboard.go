package controllers

import (
	"net/http"
	"strconv"

	"fund-ledger-api/config"
	"fund-ledger-api/services"

	"github.com/gin-gonic/gin"
)

// GetDepartmentSummary returns the department budget roll-up, recomputed
// from the ledger rows on every call.
func GetDepartmentSummary(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
		return
	}

	summary, err := services.NewBudgetService(config.DB).DepartmentSummary(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summary,
	})
}

// GetProjectBudget returns the per-project roll-up.
func GetProjectBudget(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	budget, err := services.NewBudgetService(config.DB).ProjectBudget(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    budget,
	})
}
