package services

import (
	"testing"

	"fund-ledger-api/models"
)

func TestPercentOf(t *testing.T) {
	if got := percentOf(50, 200); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
	if got := percentOf(100, 0); got != 0 {
		t.Fatalf("zero whole must yield 0, got %v", got)
	}
	if got := percentOf(0, 100); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestClampNonNegative(t *testing.T) {
	if got := clampNonNegative(-5); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := clampNonNegative(7); got != 7 {
		t.Fatalf("expected 7, got %v", got)
	}
}

func TestRollUpProject(t *testing.T) {
	project := models.Project{
		ProjectID:       1,
		ProjectName:     "Edge Caching",
		ApprovedBudget:  1000000,
		SpentBudget:     1200000,
		DisbursedAmount: 500000,
	}
	budget := rollUpProject(&project)

	if budget.RemainingBudget != -200000 {
		t.Fatalf("expected remaining -200000, got %v", budget.RemainingBudget)
	}
	if !budget.OverBudget {
		t.Fatal("expected over-budget flag")
	}
	if budget.PendingDisbursement != 700000 {
		t.Fatalf("expected pending disbursement 700000, got %v", budget.PendingDisbursement)
	}
	if budget.UtilizationPercent != 120 {
		t.Fatalf("expected utilization 120, got %v", budget.UtilizationPercent)
	}
}

func TestDepartmentSummary(t *testing.T) {
	f := newFixture(t)
	svc := NewBudgetService(f.db)

	// A sibling project under the same department.
	second := models.Project{
		DepartmentID:    f.department.DepartmentID,
		QuotaID:         f.quota.QuotaID,
		ProjectName:     "Second Project",
		ProjectType:     models.ProjectTypeResearch,
		ApprovedBudget:  50000000,
		SpentBudget:     10000000,
		DisbursedAmount: 4000000,
		CreatedBy:       f.reviewer.UserID,
	}
	mustCreate(t, f.db, &second)

	summary, err := svc.DepartmentSummary(f.department.DepartmentID)
	if err != nil {
		t.Fatalf("DepartmentSummary returned error: %v", err)
	}
	if summary.ProjectCount != 2 {
		t.Fatalf("expected 2 projects, got %d", summary.ProjectCount)
	}
	if summary.AllocatedBudget != 100000000 {
		t.Fatalf("expected allocated 100000000 from the quota, got %v", summary.AllocatedBudget)
	}
	if summary.ApprovedBudget != 150000000 {
		t.Fatalf("expected approved 150000000, got %v", summary.ApprovedBudget)
	}
	if summary.SpentBudget != 10000000 {
		t.Fatalf("expected spent 10000000, got %v", summary.SpentBudget)
	}
	if summary.RemainingBudget != 140000000 {
		t.Fatalf("expected remaining 140000000, got %v", summary.RemainingBudget)
	}
	if summary.PendingDisbursement != 6000000 {
		t.Fatalf("expected pending disbursement 6000000, got %v", summary.PendingDisbursement)
	}
}

func TestDepartmentSummaryRecomputesPerCall(t *testing.T) {
	f := newFixture(t)
	svc := NewBudgetService(f.db)

	before, err := svc.DepartmentSummary(f.department.DepartmentID)
	if err != nil {
		t.Fatalf("DepartmentSummary returned error: %v", err)
	}
	if before.SpentBudget != 0 {
		t.Fatalf("expected zero spent before approvals, got %v", before.SpentBudget)
	}

	result, err := f.svc.CreateRequest(CreateRequestInput{
		Kind:            models.KindProjectPhase,
		OwnerEntityID:   f.phase.PhaseID,
		RequesterID:     f.user.UserID,
		RequestedAmount: 25000000,
	})
	if err != nil {
		t.Fatalf("CreateRequest returned error: %v", err)
	}
	if _, err := f.svc.Decide(result.Request.RequestID, DecisionApprove, f.reviewer.UserID, ""); err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}

	after, err := svc.DepartmentSummary(f.department.DepartmentID)
	if err != nil {
		t.Fatalf("DepartmentSummary returned error: %v", err)
	}
	if after.SpentBudget != 25000000 {
		t.Fatalf("expected spent 25000000 after approval, got %v", after.SpentBudget)
	}
	if after.UtilizationPercent != 25 {
		t.Fatalf("expected utilization 25, got %v", after.UtilizationPercent)
	}
}

func TestQuotaDetails(t *testing.T) {
	f := newFixture(t)
	svc := NewBudgetService(f.db)

	result, err := f.svc.CreateRequest(CreateRequestInput{
		Kind:            models.KindProjectPhase,
		OwnerEntityID:   f.phase.PhaseID,
		RequesterID:     f.user.UserID,
		RequestedAmount: 40000000,
	})
	if err != nil {
		t.Fatalf("CreateRequest returned error: %v", err)
	}
	if _, err := f.svc.Decide(result.Request.RequestID, DecisionApprove, f.reviewer.UserID, ""); err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}

	details, err := svc.QuotaDetails(f.quota.QuotaID)
	if err != nil {
		t.Fatalf("QuotaDetails returned error: %v", err)
	}
	if details.Quota.QuotaID != f.quota.QuotaID {
		t.Fatalf("wrong quota loaded: %+v", details.Quota)
	}
	if len(details.Projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(details.Projects))
	}
	if details.TotalApproved != 100000000 || details.TotalSpent != 40000000 {
		t.Fatalf("unexpected totals: approved=%v spent=%v", details.TotalApproved, details.TotalSpent)
	}
	if len(details.Disbursements) != 1 {
		t.Fatalf("expected 1 request in the history, got %d", len(details.Disbursements))
	}
	if details.Disbursements[0].RequestID != result.Request.RequestID {
		t.Fatalf("wrong request in the history: %+v", details.Disbursements[0])
	}
}
