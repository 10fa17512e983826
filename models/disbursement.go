package models

import (
	"encoding/json"
	"time"
)

// RequestKind identifies what a disbursement request is drawn against.
type RequestKind string

const (
	KindProjectPhase      RequestKind = "project_phase"
	KindConferenceExpense RequestKind = "conference_expense"
	KindConferenceFunding RequestKind = "conference_funding"
	KindJournalFunding    RequestKind = "journal_funding"
)

// RequestStatus is the lifecycle state of a disbursement request.
// Approved and rejected are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// DisbursementRequest represents the disbursement_requests table.
//
// FieldValues carries the once-settable values proposed at creation time as
// a JSON object. They are applied to the owner entity, and frozen there,
// only when the request is approved.
type DisbursementRequest struct {
	RequestID       int           `gorm:"primaryKey;column:request_id" json:"request_id"`
	RequestNumber   string        `gorm:"column:request_number;uniqueIndex" json:"request_number"`
	Kind            RequestKind   `gorm:"column:kind" json:"kind"`
	OwnerEntityID   int           `gorm:"column:owner_entity_id" json:"owner_entity_id"`
	ProjectID       int           `gorm:"column:project_id" json:"project_id"`
	RequesterID     int           `gorm:"column:requester_id" json:"requester_id"`
	RequestedAmount float64       `gorm:"column:requested_amount" json:"requested_amount"`
	Description     string        `gorm:"column:description" json:"description"`
	Status          RequestStatus `gorm:"column:status;default:pending" json:"status"`
	FieldValues     *string       `gorm:"column:field_values" json:"field_values,omitempty"`
	RejectionReason *string       `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	ApproverID      *int          `gorm:"column:approver_id" json:"approver_id,omitempty"`
	ApprovedAt      *time.Time    `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CreateAt        *time.Time    `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time    `gorm:"column:update_at" json:"update_at"`
	DeleteAt        *time.Time    `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Requester User              `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Approver  *User             `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	Documents []RequestDocument `gorm:"foreignKey:RequestID" json:"documents,omitempty"`
}

// TableName overrides the table name for DisbursementRequest.
func (DisbursementRequest) TableName() string {
	return "disbursement_requests"
}

// ValidRequestKind reports whether k is a known request kind.
func ValidRequestKind(k RequestKind) bool {
	switch k {
	case KindProjectPhase, KindConferenceExpense, KindConferenceFunding, KindJournalFunding:
		return true
	}
	return false
}

// IsDecided reports whether the request reached a terminal state.
func (r *DisbursementRequest) IsDecided() bool {
	return r.Status == RequestApproved || r.Status == RequestRejected
}

// StagedFieldValues decodes the field_values JSON. A missing or malformed
// column yields an empty map rather than an error: old rows predate staging.
func (r *DisbursementRequest) StagedFieldValues() map[string]string {
	values := map[string]string{}
	if r.FieldValues == nil || *r.FieldValues == "" {
		return values
	}
	if err := json.Unmarshal([]byte(*r.FieldValues), &values); err != nil {
		return map[string]string{}
	}
	return values
}
