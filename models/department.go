package models

import "time"

// Department represents the departments table. Departments are deactivated,
// never deleted, so quotas and projects keep a valid parent forever.
type Department struct {
	DepartmentID   int        `gorm:"primaryKey;column:department_id" json:"department_id"`
	DepartmentName string     `gorm:"column:department_name" json:"department_name"`
	IsActive       bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`

	Quotas []Quota `gorm:"foreignKey:DepartmentID" json:"quotas,omitempty"`
}

// Quota represents the quotas table: a department's yearly allocation of
// project slots and budget. Created once per department/year; the allocated
// budget moves only through ledger-recorded adjustments.
type Quota struct {
	QuotaID          int        `gorm:"primaryKey;column:quota_id" json:"quota_id"`
	DepartmentID     int        `gorm:"column:department_id" json:"department_id"`
	FiscalYear       int        `gorm:"column:fiscal_year" json:"fiscal_year"`
	NumProjects      int        `gorm:"column:num_projects" json:"num_projects"`
	NumberConference int        `gorm:"column:number_conference" json:"number_conference"`
	NumberPaper      int        `gorm:"column:number_paper" json:"number_paper"`
	AllocatedBudget  float64    `gorm:"column:allocated_budget" json:"allocated_budget"`
	CreatedBy        int        `gorm:"column:created_by" json:"created_by"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Projects   []Project  `gorm:"foreignKey:QuotaID" json:"projects,omitempty"`
}

// TableName overrides
func (Department) TableName() string {
	return "departments"
}

func (Quota) TableName() string {
	return "quotas"
}
