package controllers

import (
	"net/http"
	"time"

	"fund-ledger-api/config"
	"fund-ledger-api/models"
	"fund-ledger-api/services"

	"github.com/gin-gonic/gin"
)

// CreateConference registers a conference entry under a project.
func CreateConference(c *gin.Context) {
	type CreateConferenceRequest struct {
		ProjectID      int    `json:"project_id" binding:"required"`
		ConferenceName string `json:"conference_name" binding:"required"`
	}

	var req CreateConferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := config.DB.Where("project_id = ? AND delete_at IS NULL", req.ProjectID).
		First(&project).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project"})
		return
	}

	now := time.Now()
	conference := models.Conference{
		ProjectID:        req.ProjectID,
		ConferenceName:   req.ConferenceName,
		SubmissionStatus: models.SubmissionPending,
		CreateAt:         &now,
		UpdateAt:         &now,
	}

	if err := config.DB.Create(&conference).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conference"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Conference created successfully",
		"conference": conference,
	})
}

// GetConference returns one conference entry with its lock state per
// once-settable field, so the UI can disable frozen inputs.
func GetConference(c *gin.Context) {
	id := c.Param("id")

	var conference models.Conference
	if err := config.DB.Where("conference_id = ? AND delete_at IS NULL", id).
		First(&conference).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conference not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conference": conference,
		"locked_fields": gin.H{
			"location":          services.TextSet(conference.Location),
			"acceptance_date":   services.DateSet(conference.AcceptanceDate),
			"presentation_date": services.DateSet(conference.PresentationDate),
			"funding_amount":    services.AmountSet(conference.FundingAmount),
		},
	})
}

// UpdateConference merges the caller's values into the once-settable fields.
// Fields already locked silently keep their stored value; fields written
// here freeze immediately.
func UpdateConference(c *gin.Context) {
	id := c.Param("id")

	type UpdateConferenceRequest struct {
		ConferenceName   string     `json:"conference_name"`
		Location         string     `json:"location"`
		AcceptanceDate   *time.Time `json:"acceptance_date"`
		PresentationDate *time.Time `json:"presentation_date"`
		FundingAmount    float64    `json:"funding_amount"`
	}

	var req UpdateConferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var conference models.Conference
	if err := config.DB.Where("conference_id = ? AND delete_at IS NULL", id).
		First(&conference).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conference not found"})
		return
	}

	if req.ConferenceName != "" {
		conference.ConferenceName = req.ConferenceName
	}
	conference.Location, _ = services.MergeText(conference.Location, req.Location)
	conference.AcceptanceDate, _ = services.MergeDate(conference.AcceptanceDate, req.AcceptanceDate)
	conference.PresentationDate, _ = services.MergeDate(conference.PresentationDate, req.PresentationDate)
	conference.FundingAmount, _ = services.MergeAmount(conference.FundingAmount, req.FundingAmount)

	now := time.Now()
	conference.UpdateAt = &now

	if err := config.DB.Save(&conference).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update conference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Conference updated",
		"conference": conference,
	})
}

// SetConferenceSubmissionStatus decides a pending conference entry
// (officer/admin). The decision itself is once-settable.
func SetConferenceSubmissionStatus(c *gin.Context) {
	id := c.Param("id")

	req, ok := bindSubmissionStatus(c)
	if !ok {
		return
	}

	var conference models.Conference
	if err := config.DB.Where("conference_id = ? AND delete_at IS NULL", id).
		First(&conference).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conference not found"})
		return
	}

	// Guarded by the current status so two concurrent decisions cannot
	// both land; the loser sees zero affected rows.
	res := config.DB.Model(&models.Conference{}).
		Where("conference_id = ? AND submission_status = ?", conference.ConferenceID, models.SubmissionPending).
		Updates(map[string]interface{}{
			"submission_status": req,
			"update_at":         time.Now(),
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update submission status"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Submission status already decided"})
		return
	}

	config.DB.First(&conference, conference.ConferenceID)

	c.JSON(http.StatusOK, gin.H{
		"message":    "Submission status updated",
		"conference": conference,
	})
}

// CreateJournal registers a journal entry under a project.
func CreateJournal(c *gin.Context) {
	type CreateJournalRequest struct {
		ProjectID   int    `json:"project_id" binding:"required"`
		JournalName string `json:"journal_name" binding:"required"`
	}

	var req CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := config.DB.Where("project_id = ? AND delete_at IS NULL", req.ProjectID).
		First(&project).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project"})
		return
	}

	now := time.Now()
	journal := models.Journal{
		ProjectID:       req.ProjectID,
		JournalName:     req.JournalName,
		PublisherStatus: models.SubmissionPending,
		CreateAt:        &now,
		UpdateAt:        &now,
	}

	if err := config.DB.Create(&journal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create journal"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Journal created successfully",
		"journal": journal,
	})
}

// GetJournal returns one journal entry with its per-field lock state.
func GetJournal(c *gin.Context) {
	id := c.Param("id")

	var journal models.Journal
	if err := config.DB.Where("journal_id = ? AND delete_at IS NULL", id).
		First(&journal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"journal": journal,
		"locked_fields": gin.H{
			"doi_number":       services.TextSet(journal.DOINumber),
			"acceptance_date":  services.DateSet(journal.AcceptanceDate),
			"publication_date": services.DateSet(journal.PublicationDate),
			"funding_amount":   services.AmountSet(journal.FundingAmount),
		},
	})
}

// UpdateJournal merges the caller's values into the once-settable fields
// under the same rules as UpdateConference.
func UpdateJournal(c *gin.Context) {
	id := c.Param("id")

	type UpdateJournalRequest struct {
		JournalName     string     `json:"journal_name"`
		DOINumber       string     `json:"doi_number"`
		AcceptanceDate  *time.Time `json:"acceptance_date"`
		PublicationDate *time.Time `json:"publication_date"`
		FundingAmount   float64    `json:"funding_amount"`
	}

	var req UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var journal models.Journal
	if err := config.DB.Where("journal_id = ? AND delete_at IS NULL", id).
		First(&journal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		return
	}

	if req.JournalName != "" {
		journal.JournalName = req.JournalName
	}
	journal.DOINumber, _ = services.MergeText(journal.DOINumber, req.DOINumber)
	journal.AcceptanceDate, _ = services.MergeDate(journal.AcceptanceDate, req.AcceptanceDate)
	journal.PublicationDate, _ = services.MergeDate(journal.PublicationDate, req.PublicationDate)
	journal.FundingAmount, _ = services.MergeAmount(journal.FundingAmount, req.FundingAmount)

	now := time.Now()
	journal.UpdateAt = &now

	if err := config.DB.Save(&journal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update journal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Journal updated",
		"journal": journal,
	})
}

// SetJournalPublisherStatus decides a pending journal entry (officer/admin).
func SetJournalPublisherStatus(c *gin.Context) {
	id := c.Param("id")

	req, ok := bindSubmissionStatus(c)
	if !ok {
		return
	}

	var journal models.Journal
	if err := config.DB.Where("journal_id = ? AND delete_at IS NULL", id).
		First(&journal).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal not found"})
		return
	}

	// Same guarded write as the conference decision.
	res := config.DB.Model(&models.Journal{}).
		Where("journal_id = ? AND publisher_status = ?", journal.JournalID, models.SubmissionPending).
		Updates(map[string]interface{}{
			"publisher_status": req,
			"update_at":        time.Now(),
		})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update publisher status"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Publisher status already decided"})
		return
	}

	config.DB.First(&journal, journal.JournalID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Publisher status updated",
		"journal": journal,
	})
}

func bindSubmissionStatus(c *gin.Context) (models.SubmissionStatus, bool) {
	type StatusRequest struct {
		Status models.SubmissionStatus `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	if req.Status != models.SubmissionApproved && req.Status != models.SubmissionRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be approved or rejected"})
		return "", false
	}
	return req.Status, true
}
