package services

import (
	"fund-ledger-api/models"

	"gorm.io/gorm"
)

// BudgetService is the read side of the ledger: every derived figure is
// recomputed from the stored rows on each call, never cached, so the numbers
// cannot drift from the ledger.
type BudgetService struct {
	db *gorm.DB
}

// NewBudgetService wires the aggregator to a database.
func NewBudgetService(db *gorm.DB) *BudgetService {
	return &BudgetService{db: db}
}

// ProjectBudget is the per-project roll-up.
type ProjectBudget struct {
	ProjectID           int     `json:"project_id"`
	ProjectName         string  `json:"project_name"`
	ApprovedBudget      float64 `json:"approved_budget"`
	SpentBudget         float64 `json:"spent_budget"`
	DisbursedAmount     float64 `json:"disbursed_amount"`
	RemainingBudget     float64 `json:"remaining_budget"`
	PendingDisbursement float64 `json:"pending_disbursement"`
	UtilizationPercent  float64 `json:"utilization_percent"`
	OverBudget          bool    `json:"over_budget"`
}

// DepartmentSummary is the per-department roll-up across every project under
// the department's quotas.
type DepartmentSummary struct {
	DepartmentID        int     `json:"department_id"`
	ProjectCount        int     `json:"project_count"`
	AllocatedBudget     float64 `json:"allocated_budget"`
	ApprovedBudget      float64 `json:"approved_budget"`
	SpentBudget         float64 `json:"spent_budget"`
	DisbursedAmount     float64 `json:"disbursed_amount"`
	RemainingBudget     float64 `json:"remaining_budget"`
	PendingDisbursement float64 `json:"pending_disbursement"`
	UtilizationPercent  float64 `json:"utilization_percent"`
	DisbursedPercent    float64 `json:"disbursed_percent"`
}

// QuotaDetails bundles a quota with its projects' roll-ups and the request
// history drawn against them.
type QuotaDetails struct {
	Quota         models.Quota                 `json:"quota"`
	Projects      []ProjectBudget              `json:"projects"`
	Disbursements []models.DisbursementRequest `json:"disbursements"`
	TotalApproved float64                      `json:"total_approved"`
	TotalSpent    float64                      `json:"total_spent"`
}

// ProjectBudget computes the roll-up for one project.
func (s *BudgetService) ProjectBudget(projectID int) (*ProjectBudget, error) {
	var project models.Project
	if err := s.db.Where("project_id = ? AND delete_at IS NULL", projectID).
		First(&project).Error; err != nil {
		return nil, err
	}
	budget := rollUpProject(&project)
	return &budget, nil
}

// DepartmentSummary computes the roll-up for one department.
func (s *BudgetService) DepartmentSummary(departmentID int) (*DepartmentSummary, error) {
	var department models.Department
	if err := s.db.Where("department_id = ?", departmentID).
		First(&department).Error; err != nil {
		return nil, err
	}

	var allocated float64
	if err := s.db.Model(&models.Quota{}).
		Where("department_id = ? AND delete_at IS NULL", departmentID).
		Select("COALESCE(SUM(allocated_budget), 0)").
		Scan(&allocated).Error; err != nil {
		return nil, err
	}

	var projects []models.Project
	if err := s.db.Where("department_id = ? AND delete_at IS NULL", departmentID).
		Find(&projects).Error; err != nil {
		return nil, err
	}

	summary := DepartmentSummary{
		DepartmentID:    departmentID,
		ProjectCount:    len(projects),
		AllocatedBudget: allocated,
	}
	for i := range projects {
		summary.ApprovedBudget += projects[i].ApprovedBudget
		summary.SpentBudget += projects[i].SpentBudget
		summary.DisbursedAmount += projects[i].DisbursedAmount
	}
	summary.RemainingBudget = summary.ApprovedBudget - summary.SpentBudget
	summary.PendingDisbursement = clampNonNegative(summary.SpentBudget - summary.DisbursedAmount)
	summary.UtilizationPercent = percentOf(summary.SpentBudget, summary.ApprovedBudget)
	summary.DisbursedPercent = percentOf(summary.DisbursedAmount, summary.ApprovedBudget)
	return &summary, nil
}

// QuotaDetails loads a quota, its projects' roll-ups and every request
// raised against those projects.
func (s *BudgetService) QuotaDetails(quotaID int) (*QuotaDetails, error) {
	var quota models.Quota
	if err := s.db.Preload("Department").
		Where("quota_id = ? AND delete_at IS NULL", quotaID).
		First(&quota).Error; err != nil {
		return nil, err
	}

	var projects []models.Project
	if err := s.db.Where("quota_id = ? AND delete_at IS NULL", quotaID).
		Find(&projects).Error; err != nil {
		return nil, err
	}

	details := &QuotaDetails{Quota: quota}
	projectIDs := make([]int, 0, len(projects))
	for i := range projects {
		budget := rollUpProject(&projects[i])
		details.Projects = append(details.Projects, budget)
		details.TotalApproved += budget.ApprovedBudget
		details.TotalSpent += budget.SpentBudget
		projectIDs = append(projectIDs, projects[i].ProjectID)
	}

	if len(projectIDs) > 0 {
		if err := s.db.Preload("Documents").
			Where("project_id IN ? AND delete_at IS NULL", projectIDs).
			Order("create_at DESC").
			Find(&details.Disbursements).Error; err != nil {
			return nil, err
		}
	}
	return details, nil
}

func rollUpProject(p *models.Project) ProjectBudget {
	return ProjectBudget{
		ProjectID:           p.ProjectID,
		ProjectName:         p.ProjectName,
		ApprovedBudget:      p.ApprovedBudget,
		SpentBudget:         p.SpentBudget,
		DisbursedAmount:     p.DisbursedAmount,
		RemainingBudget:     p.ApprovedBudget - p.SpentBudget,
		PendingDisbursement: clampNonNegative(p.SpentBudget - p.DisbursedAmount),
		UtilizationPercent:  percentOf(p.SpentBudget, p.ApprovedBudget),
		OverBudget:          p.SpentBudget > p.ApprovedBudget,
	}
}

// percentOf guards the zero-budget case: a project with no approved budget
// reports 0% utilization, never a division by zero.
func percentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
