package services

import (
	"fmt"
	"log"

	"fund-ledger-api/config"
	"fund-ledger-api/models"

	"gorm.io/gorm"
)

// notifyDecision emails the requester after a decision. Strictly
// best-effort: the decision already committed, so mail failures are logged
// and swallowed.
func notifyDecision(db *gorm.DB, request *models.DisbursementRequest) {
	var requester models.User
	if err := db.Where("user_id = ? AND delete_at IS NULL", request.RequesterID).
		First(&requester).Error; err != nil {
		log.Printf("decision notification skipped, requester %d not found: %v", request.RequesterID, err)
		return
	}
	if requester.Email == "" {
		return
	}

	var subject, body string
	switch request.Status {
	case models.RequestApproved:
		subject = fmt.Sprintf("Disbursement request %s approved", request.RequestNumber)
		body = fmt.Sprintf(
			"<p>Your %s request <b>%s</b> for %.2f has been approved.</p>",
			request.Kind, request.RequestNumber, request.RequestedAmount)
	case models.RequestRejected:
		reason := ""
		if request.RejectionReason != nil {
			reason = *request.RejectionReason
		}
		subject = fmt.Sprintf("Disbursement request %s rejected", request.RequestNumber)
		body = fmt.Sprintf(
			"<p>Your %s request <b>%s</b> was rejected.</p><p>Reason: %s</p>",
			request.Kind, request.RequestNumber, reason)
	default:
		return
	}

	if err := config.SendMail([]string{requester.Email}, subject, body); err != nil {
		log.Printf("failed to send decision notification for request %d: %v", request.RequestID, err)
	}
}
