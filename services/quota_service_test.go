package services

import (
	"errors"
	"testing"

	"fund-ledger-api/models"
)

func TestCreateQuotaOnePerDepartmentYear(t *testing.T) {
	f := newFixture(t)
	svc := NewQuotaService(f.db)

	// The fixture already holds the 2025 quota for this department.
	_, err := svc.CreateQuota(CreateQuotaInput{
		DepartmentID:    f.department.DepartmentID,
		FiscalYear:      2025,
		NumProjects:     1,
		AllocatedBudget: 1000,
		CreatedBy:       f.reviewer.UserID,
	})
	if !errors.Is(err, ErrDuplicateQuota) {
		t.Fatalf("expected ErrDuplicateQuota, got %v", err)
	}

	// A different year is a fresh allocation.
	quota, err := svc.CreateQuota(CreateQuotaInput{
		DepartmentID:    f.department.DepartmentID,
		FiscalYear:      2026,
		NumProjects:     2,
		AllocatedBudget: 50000000,
		CreatedBy:       f.reviewer.UserID,
	})
	if err != nil {
		t.Fatalf("CreateQuota returned error: %v", err)
	}
	if quota.QuotaID == 0 || quota.FiscalYear != 2026 {
		t.Fatalf("unexpected quota: %+v", quota)
	}
}

func TestCreateQuotaRequiresActiveDepartment(t *testing.T) {
	f := newFixture(t)
	svc := NewQuotaService(f.db)

	inactive := models.Department{DepartmentName: "Closed Department", IsActive: false}
	mustCreate(t, f.db, &inactive)

	_, err := svc.CreateQuota(CreateQuotaInput{
		DepartmentID:    inactive.DepartmentID,
		FiscalYear:      2025,
		NumProjects:     1,
		AllocatedBudget: 1000,
		CreatedBy:       f.reviewer.UserID,
	})
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields["department_id"] == "" {
		t.Fatalf("unexpected fields: %v", ve.Fields)
	}
}

func TestCreateProjectConsumesQuotaSlots(t *testing.T) {
	f := newFixture(t)
	svc := NewQuotaService(f.db)

	// The quota allows 2 conference projects; the fixture's research
	// project draws on a separate slot pool.
	for i := 0; i < 2; i++ {
		_, err := svc.CreateProject(CreateProjectInput{
			QuotaID:        f.quota.QuotaID,
			ProjectName:    "Conference Trip",
			ProjectType:    models.ProjectTypeConference,
			ApprovedBudget: 1000000,
			CreatedBy:      f.reviewer.UserID,
		})
		if err != nil {
			t.Fatalf("conference project %d should fit the quota: %v", i+1, err)
		}
	}

	_, err := svc.CreateProject(CreateProjectInput{
		QuotaID:        f.quota.QuotaID,
		ProjectName:    "One Trip Too Many",
		ProjectType:    models.ProjectTypeConference,
		ApprovedBudget: 1000000,
		CreatedBy:      f.reviewer.UserID,
	})
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError when slots run out, got %v", err)
	}
	if ve.Fields["quota_id"] == "" {
		t.Fatalf("unexpected fields: %v", ve.Fields)
	}

	// Research slots are counted independently: 1 of 3 used so far.
	project, err := svc.CreateProject(CreateProjectInput{
		QuotaID:        f.quota.QuotaID,
		ProjectName:    "Second Research Project",
		ProjectType:    models.ProjectTypeResearch,
		ApprovedBudget: 2000000,
		CreatedBy:      f.reviewer.UserID,
	})
	if err != nil {
		t.Fatalf("research slot should still be free: %v", err)
	}
	if project.DepartmentID != f.department.DepartmentID {
		t.Fatalf("project should inherit the quota's department, got %d", project.DepartmentID)
	}
}

func TestCreateProjectRejectsUnknownType(t *testing.T) {
	f := newFixture(t)

	_, err := NewQuotaService(f.db).CreateProject(CreateProjectInput{
		QuotaID:        f.quota.QuotaID,
		ProjectName:    "Mystery",
		ProjectType:    models.ProjectType("workshop"),
		ApprovedBudget: 1000,
		CreatedBy:      f.reviewer.UserID,
	})
	if _, ok := AsValidationError(err); !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAdjustBudgetFloorsAtZeroAndWritesLedger(t *testing.T) {
	f := newFixture(t)
	svc := NewQuotaService(f.db)

	// The allocation cannot go negative.
	_, err := svc.AdjustBudget(f.quota.QuotaID, -200000000, "clawback", f.reviewer.UserID)
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields["delta"] == "" {
		t.Fatalf("unexpected fields: %v", ve.Fields)
	}

	quota, err := svc.AdjustBudget(f.quota.QuotaID, -40000000, "mid-year clawback", f.reviewer.UserID)
	if err != nil {
		t.Fatalf("AdjustBudget returned error: %v", err)
	}
	if quota.AllocatedBudget != 60000000 {
		t.Fatalf("expected allocation 60000000, got %v", quota.AllocatedBudget)
	}

	quota, err = svc.AdjustBudget(f.quota.QuotaID, 10000000, "supplement", f.reviewer.UserID)
	if err != nil {
		t.Fatalf("AdjustBudget returned error: %v", err)
	}
	if quota.AllocatedBudget != 70000000 {
		t.Fatalf("expected allocation 70000000, got %v", quota.AllocatedBudget)
	}

	// Every successful adjustment lands in the ledger; the refused one
	// does not.
	var entries []models.LedgerEntry
	if err := f.db.Where("entry_type = ?", models.EntryAdjustment).
		Order("entry_id").Find(&entries).Error; err != nil {
		t.Fatalf("failed to load ledger entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 adjustment entries, got %d", len(entries))
	}
	if entries[0].Amount != -40000000 || entries[1].Amount != 10000000 {
		t.Fatalf("unexpected entry amounts: %v, %v", entries[0].Amount, entries[1].Amount)
	}
	if entries[0].QuotaID == nil || *entries[0].QuotaID != f.quota.QuotaID {
		t.Fatalf("entry not tied to the quota: %+v", entries[0])
	}

	// The aggregator sees the adjusted allocation immediately.
	summary, err := NewBudgetService(f.db).DepartmentSummary(f.department.DepartmentID)
	if err != nil {
		t.Fatalf("DepartmentSummary returned error: %v", err)
	}
	if summary.AllocatedBudget != 70000000 {
		t.Fatalf("expected allocated 70000000 in summary, got %v", summary.AllocatedBudget)
	}
}
