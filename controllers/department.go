package controllers

import (
	"net/http"
	"time"

	"fund-ledger-api/config"
	"fund-ledger-api/models"

	"github.com/gin-gonic/gin"
)

// GetDepartments returns all departments; pass active=true to filter.
func GetDepartments(c *gin.Context) {
	var departments []models.Department
	query := config.DB.Order("department_name")

	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&departments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch departments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"departments": departments,
		"total":       len(departments),
	})
}

// CreateDepartment creates a new department (admin only).
func CreateDepartment(c *gin.Context) {
	type CreateDepartmentRequest struct {
		DepartmentName string `json:"department_name" binding:"required"`
	}

	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	department := models.Department{
		DepartmentName: req.DepartmentName,
		IsActive:       true,
		CreateAt:       &now,
		UpdateAt:       &now,
	}

	if err := config.DB.Create(&department).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create department"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Department created successfully",
		"department": department,
	})
}

// DeactivateDepartment marks a department inactive. Departments are never
// deleted, so quota and project history stays intact.
func DeactivateDepartment(c *gin.Context) {
	id := c.Param("id")

	var department models.Department
	if err := config.DB.Where("department_id = ?", id).First(&department).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Department not found"})
		return
	}

	now := time.Now()
	department.IsActive = false
	department.UpdateAt = &now

	if err := config.DB.Save(&department).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate department"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Department deactivated",
		"department": department,
	})
}
