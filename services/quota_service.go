package services

import (
	"errors"
	"time"

	"fund-ledger-api/models"

	"gorm.io/gorm"
)

// QuotaService owns quota allocation: yearly quota creation, project slot
// consumption and ledger-recorded budget adjustments.
type QuotaService struct {
	db *gorm.DB
}

// NewQuotaService wires the service to a database.
func NewQuotaService(db *gorm.DB) *QuotaService {
	return &QuotaService{db: db}
}

// CreateQuotaInput carries a department's yearly allocation.
type CreateQuotaInput struct {
	DepartmentID     int
	FiscalYear       int
	NumProjects      int
	NumberConference int
	NumberPaper      int
	AllocatedBudget  float64
	CreatedBy        int
}

// CreateQuota creates a department's yearly allocation. One quota per
// department and fiscal year; afterwards the allocated budget moves only
// through ledger-recorded adjustments.
func (s *QuotaService) CreateQuota(in CreateQuotaInput) (*models.Quota, error) {
	var quota models.Quota

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var department models.Department
		if err := tx.Where("department_id = ? AND is_active = ?", in.DepartmentID, true).
			First(&department).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewValidationError("department_id", "unknown or inactive department")
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Quota{}).
			Where("department_id = ? AND fiscal_year = ? AND delete_at IS NULL",
				in.DepartmentID, in.FiscalYear).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateQuota
		}

		now := time.Now()
		quota = models.Quota{
			DepartmentID:     in.DepartmentID,
			FiscalYear:       in.FiscalYear,
			NumProjects:      in.NumProjects,
			NumberConference: in.NumberConference,
			NumberPaper:      in.NumberPaper,
			AllocatedBudget:  in.AllocatedBudget,
			CreatedBy:        in.CreatedBy,
			CreateAt:         &now,
			UpdateAt:         &now,
		}
		return tx.Create(&quota).Error
	})
	if err != nil {
		return nil, err
	}
	return &quota, nil
}

// CreateProjectInput carries a new project drawing on a quota slot.
type CreateProjectInput struct {
	QuotaID        int
	ProjectName    string
	ProjectType    models.ProjectType
	ApprovedBudget float64
	GroupID        *int
	CreatedBy      int
}

// quotaSlotLimit returns how many projects of the given type the quota
// allows.
func quotaSlotLimit(quota *models.Quota, projectType models.ProjectType) int {
	switch projectType {
	case models.ProjectTypeConference:
		return quota.NumberConference
	case models.ProjectTypeJournal:
		return quota.NumberPaper
	default:
		return quota.NumProjects
	}
}

// CreateProject spawns a project by consuming a quota slot of its type. The
// slot count and the insert share one transaction; on MySQL the quota row is
// locked so two concurrent creates cannot both take the last slot.
func (s *QuotaService) CreateProject(in CreateProjectInput) (*models.Project, error) {
	switch in.ProjectType {
	case models.ProjectTypeResearch, models.ProjectTypeConference, models.ProjectTypeJournal:
	default:
		return nil, NewValidationError("project_type", "invalid project type")
	}

	var project models.Project

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var quota models.Quota
		if err := forUpdate(tx).
			Where("quota_id = ? AND delete_at IS NULL", in.QuotaID).
			First(&quota).Error; err != nil {
			return err
		}

		var used int64
		if err := tx.Model(&models.Project{}).
			Where("quota_id = ? AND project_type = ? AND delete_at IS NULL",
				in.QuotaID, in.ProjectType).
			Count(&used).Error; err != nil {
			return err
		}
		if int(used) >= quotaSlotLimit(&quota, in.ProjectType) {
			return NewValidationError("quota_id", "no remaining quota slots for this project type")
		}

		now := time.Now()
		project = models.Project{
			DepartmentID:   quota.DepartmentID,
			QuotaID:        quota.QuotaID,
			ProjectName:    in.ProjectName,
			ProjectType:    in.ProjectType,
			ApprovedBudget: in.ApprovedBudget,
			GroupID:        in.GroupID,
			CreatedBy:      in.CreatedBy,
			CreateAt:       &now,
			UpdateAt:       &now,
		}
		return tx.Create(&project).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// AdjustBudget changes a quota's allocation by delta and records the change
// as an adjustment ledger entry. The allocation may not go negative.
func (s *QuotaService) AdjustBudget(quotaID int, delta float64, note string, recordedBy int) (*models.Quota, error) {
	var quota models.Quota

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).
			Where("quota_id = ? AND delete_at IS NULL", quotaID).
			First(&quota).Error; err != nil {
			return err
		}
		if quota.AllocatedBudget+delta < 0 {
			return NewValidationError("delta", "adjustment would make the allocation negative")
		}

		now := time.Now()
		quota.AllocatedBudget += delta
		quota.UpdateAt = &now
		if err := tx.Save(&quota).Error; err != nil {
			return err
		}

		adjusted := quota.QuotaID
		entry := models.LedgerEntry{
			EntryType:  models.EntryAdjustment,
			QuotaID:    &adjusted,
			Amount:     delta,
			RecordedBy: recordedBy,
			Note:       note,
			CreateAt:   &now,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &quota, nil
}
