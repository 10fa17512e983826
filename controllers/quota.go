package controllers

import (
	"net/http"
	"strconv"

	"fund-ledger-api/config"
	"fund-ledger-api/models"
	"fund-ledger-api/services"

	"github.com/gin-gonic/gin"
)

// CreateQuota creates a department's yearly allocation (office role only).
func CreateQuota(c *gin.Context) {
	type CreateQuotaRequest struct {
		DepartmentID     int     `json:"department_id" binding:"required"`
		FiscalYear       int     `json:"fiscal_year" binding:"required"`
		NumProjects      int     `json:"num_projects" binding:"required,gt=0"`
		NumberConference int     `json:"number_conference" binding:"gte=0"`
		NumberPaper      int     `json:"number_paper" binding:"gte=0"`
		AllocatedBudget  float64 `json:"allocated_budget" binding:"required,gt=0"`
	}

	var req CreateQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")

	quota, err := services.NewQuotaService(config.DB).CreateQuota(services.CreateQuotaInput{
		DepartmentID:     req.DepartmentID,
		FiscalYear:       req.FiscalYear,
		NumProjects:      req.NumProjects,
		NumberConference: req.NumberConference,
		NumberPaper:      req.NumberPaper,
		AllocatedBudget:  req.AllocatedBudget,
		CreatedBy:        userID.(int),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Quota created successfully",
		"quota":   quota,
	})
}

// GetQuotas lists quotas, filterable by department and fiscal year.
func GetQuotas(c *gin.Context) {
	var quotas []models.Quota
	query := config.DB.Preload("Department").Where("delete_at IS NULL")

	if departmentID := c.Query("department_id"); departmentID != "" {
		query = query.Where("department_id = ?", departmentID)
	}
	if year := c.Query("fiscal_year"); year != "" {
		query = query.Where("fiscal_year = ?", year)
	}

	if err := query.Order("fiscal_year DESC").Find(&quotas).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quotas": quotas,
		"total":  len(quotas),
	})
}

// GetQuotaDetails returns a quota with its projects' budget roll-ups and the
// disbursement history drawn against them.
func GetQuotaDetails(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quota id"})
		return
	}

	details, err := services.NewBudgetService(config.DB).QuotaDetails(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    details,
	})
}

// AdjustQuotaBudget changes a quota's allocation and records the change as a
// ledger entry (admin only).
func AdjustQuotaBudget(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quota id"})
		return
	}

	type AdjustRequest struct {
		Delta float64 `json:"delta" binding:"required"`
		Note  string  `json:"note" binding:"required"`
	}

	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")

	quota, err := services.NewQuotaService(config.DB).AdjustBudget(id, req.Delta, req.Note, userID.(int))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Quota budget adjusted",
		"quota":   quota,
	})
}
