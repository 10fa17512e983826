package controllers

import (
	"net/http"
	"strconv"
	"time"

	"fund-ledger-api/config"
	"fund-ledger-api/models"
	"fund-ledger-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateProject spawns a project by consuming a quota slot of its type.
func CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		QuotaID        int                `json:"quota_id" binding:"required"`
		ProjectName    string             `json:"project_name" binding:"required"`
		ProjectType    models.ProjectType `json:"project_type" binding:"required"`
		ApprovedBudget float64            `json:"approved_budget" binding:"required,gt=0"`
		GroupID        *int               `json:"group_id"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")

	project, err := services.NewQuotaService(config.DB).CreateProject(services.CreateProjectInput{
		QuotaID:        req.QuotaID,
		ProjectName:    req.ProjectName,
		ProjectType:    req.ProjectType,
		ApprovedBudget: req.ApprovedBudget,
		GroupID:        req.GroupID,
		CreatedBy:      userID.(int),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": project,
	})
}

// GetProject returns a project with its phases and recomputed budget
// figures.
func GetProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var project models.Project
	if err := config.DB.Preload("Phases", "delete_at IS NULL").Preload("Quota").
		Where("project_id = ? AND delete_at IS NULL", id).
		First(&project).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	budget, err := services.NewBudgetService(config.DB).ProjectBudget(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"budget":  budget,
	})
}

// CreateProjectPhase appends a phase to a project's ordered sequence.
func CreateProjectPhase(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	type CreatePhaseRequest struct {
		Title     string     `json:"title" binding:"required"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}

	var req CreatePhaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var phase models.ProjectPhase
	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Where("project_id = ? AND delete_at IS NULL", projectID).First(&project).Error; err != nil {
			return err
		}

		var maxOrder int
		if err := tx.Model(&models.ProjectPhase{}).
			Where("project_id = ? AND delete_at IS NULL", projectID).
			Select("COALESCE(MAX(phase_order), 0)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}

		now := time.Now()
		phase = models.ProjectPhase{
			ProjectID:  projectID,
			Title:      req.Title,
			PhaseOrder: maxOrder + 1,
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			Status:     models.PhasePending,
			CreateAt:   &now,
			UpdateAt:   &now,
		}
		return tx.Create(&phase).Error
	})
	if txErr != nil {
		respondServiceError(c, txErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Phase created successfully",
		"phase":   phase,
	})
}

// UpdatePhaseStatus moves a phase between its lifecycle labels.
func UpdatePhaseStatus(c *gin.Context) {
	id := c.Param("id")

	type UpdateStatusRequest struct {
		Status models.PhaseStatus `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidPhaseStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phase status"})
		return
	}

	var phase models.ProjectPhase
	if err := config.DB.Where("phase_id = ? AND delete_at IS NULL", id).First(&phase).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Phase not found"})
		return
	}

	now := time.Now()
	phase.Status = req.Status
	phase.UpdateAt = &now

	if err := config.DB.Save(&phase).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update phase"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Phase status updated",
		"phase":   phase,
	})
}
