package controllers

import (
	"net/http"
	"strconv"

	"fund-ledger-api/config"
	"fund-ledger-api/models"
	"fund-ledger-api/services"

	"github.com/gin-gonic/gin"
)

func disbursementService() *services.DisbursementService {
	return services.NewDisbursementService(config.DB, services.NewLocalDocumentStore())
}

// CreateDisbursementRequest is phase one of the two-phase submission: the
// request row is created pending with zero documents, and the returned id is
// the handle for the later document upload. Over-budget requests succeed
// with a budget_warning in the response.
func CreateDisbursementRequest(c *gin.Context) {
	type CreateRequest struct {
		Kind            models.RequestKind `json:"kind" binding:"required"`
		OwnerEntityID   int                `json:"owner_entity_id" binding:"required"`
		RequestedAmount float64            `json:"requested_amount" binding:"required,gt=0"`
		Description     string             `json:"description"`
		FieldValues     map[string]string  `json:"field_values"`
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")

	result, err := disbursementService().CreateRequest(services.CreateRequestInput{
		Kind:            req.Kind,
		OwnerEntityID:   req.OwnerEntityID,
		RequesterID:     userID.(int),
		RequestedAmount: req.RequestedAmount,
		Description:     req.Description,
		FieldValues:     req.FieldValues,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := gin.H{
		"message":    "Disbursement request created",
		"request":    result.Request,
		"request_id": result.Request.RequestID,
	}
	if result.BudgetWarning != "" {
		response["budget_warning"] = result.BudgetWarning
	}
	c.JSON(http.StatusCreated, response)
}

// UploadRequestDocuments is phase two: attach evidence files to a pending
// request. Retryable against the same request id; a failed upload leaves
// the request (and any files already attached) intact.
func UploadRequestDocuments(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	files := form.File["files"]

	var documentTypeID *int
	if raw := c.PostForm("document_type_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document_type_id"})
			return
		}
		documentTypeID = &id
	}

	userID, _ := c.Get("userID")

	documents, err := disbursementService().AttachDocuments(requestID, userID.(int), documentTypeID, files)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Documents uploaded",
		"documents": documents,
		"total":     len(documents),
	})
}

// DecideDisbursementRequest approves or rejects a pending request
// (officer/admin). Comment is mandatory when rejecting.
func DecideDisbursementRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	type DecisionRequest struct {
		Decision services.Decision `json:"decision" binding:"required"`
		Comment  string            `json:"comment"`
	}

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")

	request, err := disbursementService().Decide(requestID, req.Decision, userID.(int), req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Request decided",
		"request": request,
	})
}

// RecordDisbursementPayout posts a payout against an approved request
// (admin only).
func RecordDisbursementPayout(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	type PayoutRequest struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
		Note   string  `json:"note"`
	}

	var req PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")

	entry, err := disbursementService().RecordPayout(requestID, req.Amount, userID.(int), req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payout recorded",
		"entry":   entry,
	})
}

// GetPendingDisbursements lists pending requests, newest first
// (officer/admin review queue).
func GetPendingDisbursements(c *gin.Context) {
	requests, err := disbursementService().PendingRequests()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    len(requests),
	})
}

// GetDisbursementRequest returns one request with its documents.
func GetDisbursementRequest(c *gin.Context) {
	requestID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	request, err := disbursementService().GetRequest(requestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request})
}

// GetDisbursementRequests lists requests. Researchers see their own;
// officers and admins see everything, filterable by status and kind.
func GetDisbursementRequests(c *gin.Context) {
	userID, _ := c.Get("userID")
	roleID, _ := c.Get("roleID")

	var requests []models.DisbursementRequest
	query := config.DB.Preload("Documents").Where("delete_at IS NULL")

	if roleID.(int) == models.RoleResearcher {
		query = query.Where("requester_id = ?", userID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if kind := c.Query("kind"); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	if err := query.Order("create_at DESC").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"total":    len(requests),
	})
}

// GetDocumentTypes returns the attachment categories, in display order.
func GetDocumentTypes(c *gin.Context) {
	var types []models.DocumentType
	if err := config.DB.Where("delete_at IS NULL").
		Order("document_order").Find(&types).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document types"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"document_types": types})
}
