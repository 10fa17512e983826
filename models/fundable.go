package models

import "time"

// SubmissionStatus is the acceptance state of a conference or journal entry.
// A funding request can only be raised against an approved entry.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// Conference represents the conferences table. Location, the two dates and
// the funding amount are once-settable: empty (or year <= 1 for dates, <= 0
// for amounts) means never assigned, anything else is frozen.
type Conference struct {
	ConferenceID     int              `gorm:"primaryKey;column:conference_id" json:"conference_id"`
	ProjectID        int              `gorm:"column:project_id" json:"project_id"`
	ConferenceName   string           `gorm:"column:conference_name" json:"conference_name"`
	Location         string           `gorm:"column:location" json:"location"`
	AcceptanceDate   *time.Time       `gorm:"column:acceptance_date" json:"acceptance_date,omitempty"`
	PresentationDate *time.Time       `gorm:"column:presentation_date" json:"presentation_date,omitempty"`
	FundingAmount    float64          `gorm:"column:funding_amount" json:"funding_amount"`
	SubmissionStatus SubmissionStatus `gorm:"column:submission_status;default:pending" json:"submission_status"`
	CreateAt         *time.Time       `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time       `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time       `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

// Journal represents the journals table. Same once-settable rules as
// Conference, with the DOI taking the place of the location.
type Journal struct {
	JournalID       int              `gorm:"primaryKey;column:journal_id" json:"journal_id"`
	ProjectID       int              `gorm:"column:project_id" json:"project_id"`
	JournalName     string           `gorm:"column:journal_name" json:"journal_name"`
	DOINumber       string           `gorm:"column:doi_number" json:"doi_number"`
	AcceptanceDate  *time.Time       `gorm:"column:acceptance_date" json:"acceptance_date,omitempty"`
	PublicationDate *time.Time       `gorm:"column:publication_date" json:"publication_date,omitempty"`
	FundingAmount   float64          `gorm:"column:funding_amount" json:"funding_amount"`
	PublisherStatus SubmissionStatus `gorm:"column:publisher_status;default:pending" json:"publisher_status"`
	CreateAt        *time.Time       `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time       `gorm:"column:update_at" json:"update_at"`
	DeleteAt        *time.Time       `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

// TableName overrides
func (Conference) TableName() string {
	return "conferences"
}

func (Journal) TableName() string {
	return "journals"
}

// ValidSubmissionStatus reports whether s is a known acceptance state.
func ValidSubmissionStatus(s SubmissionStatus) bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionRejected:
		return true
	}
	return false
}
