package models

import "time"

// ProjectType identifies what a quota slot was consumed for.
type ProjectType string

const (
	ProjectTypeResearch   ProjectType = "research"
	ProjectTypeConference ProjectType = "conference"
	ProjectTypeJournal    ProjectType = "journal"
)

// PhaseStatus is the lifecycle label of a project phase.
type PhaseStatus string

const (
	PhaseInProgress PhaseStatus = "in_progress"
	PhasePending    PhaseStatus = "pending"
	PhaseCompleted  PhaseStatus = "completed"
	PhaseOverdue    PhaseStatus = "overdue"
)

// Project represents the projects table. SpentBudget and DisbursedAmount are
// derived columns: only an approved disbursement moves spent_budget and only
// a recorded payout moves disbursed_amount.
type Project struct {
	ProjectID       int         `gorm:"primaryKey;column:project_id" json:"project_id"`
	DepartmentID    int         `gorm:"column:department_id" json:"department_id"`
	QuotaID         int         `gorm:"column:quota_id" json:"quota_id"`
	ProjectName     string      `gorm:"column:project_name" json:"project_name"`
	ProjectType     ProjectType `gorm:"column:project_type" json:"project_type"`
	ApprovedBudget  float64     `gorm:"column:approved_budget" json:"approved_budget"`
	SpentBudget     float64     `gorm:"column:spent_budget" json:"spent_budget"`
	DisbursedAmount float64     `gorm:"column:disbursed_amount" json:"disbursed_amount"`
	GroupID         *int        `gorm:"column:group_id" json:"group_id,omitempty"`
	CreatedBy       int         `gorm:"column:created_by" json:"created_by"`
	CreateAt        *time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt        *time.Time  `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Quota      Quota          `gorm:"foreignKey:QuotaID" json:"quota,omitempty"`
	Department Department     `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Phases     []ProjectPhase `gorm:"foreignKey:ProjectID" json:"phases,omitempty"`
}

// ProjectPhase represents the project_phases table. Phases are ordered by
// phase_order within their project.
type ProjectPhase struct {
	PhaseID     int         `gorm:"primaryKey;column:phase_id" json:"phase_id"`
	ProjectID   int         `gorm:"column:project_id" json:"project_id"`
	Title       string      `gorm:"column:title" json:"title"`
	PhaseOrder  int         `gorm:"column:phase_order" json:"phase_order"`
	StartDate   *time.Time  `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate     *time.Time  `gorm:"column:end_date" json:"end_date,omitempty"`
	Status      PhaseStatus `gorm:"column:status" json:"status"`
	SpentBudget float64     `gorm:"column:spent_budget" json:"spent_budget"`
	CreateAt    *time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time  `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}

// TableName overrides
func (Project) TableName() string {
	return "projects"
}

func (ProjectPhase) TableName() string {
	return "project_phases"
}

// ValidPhaseStatus reports whether s is one of the known phase labels.
func ValidPhaseStatus(s PhaseStatus) bool {
	switch s {
	case PhaseInProgress, PhasePending, PhaseCompleted, PhaseOverdue:
		return true
	}
	return false
}
