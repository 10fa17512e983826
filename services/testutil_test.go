package services

import (
	"bytes"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"fund-ledger-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database migrated with the full
// schema. Max one connection so the memory database survives pooling.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Role{},
		&models.Department{},
		&models.User{},
		&models.Quota{},
		&models.Project{},
		&models.ProjectPhase{},
		&models.Conference{},
		&models.Journal{},
		&models.DocumentType{},
		&models.DisbursementRequest{},
		&models.RequestDocument{},
		&models.LedgerEntry{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	if err := models.SeedDocumentTypes(db); err != nil {
		t.Fatalf("failed to seed document types: %v", err)
	}
	return db
}

// fixture is a seeded department/quota/project tree with one phase, one
// approved-status journal and one approved-status conference.
type fixture struct {
	db         *gorm.DB
	svc        *DisbursementService
	user       models.User
	reviewer   models.User
	department models.Department
	quota      models.Quota
	project    models.Project
	phase      models.ProjectPhase
	journal    models.Journal
	conference models.Conference
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	now := time.Now()

	f := &fixture{db: db}
	f.svc = NewDisbursementService(db, NewLocalDocumentStoreAt(t.TempDir()))

	f.user = models.User{UserFname: "Ana", UserLname: "Researcher", Email: "ana@example.edu", RoleID: models.RoleResearcher, CreateAt: &now}
	f.reviewer = models.User{UserFname: "Rex", UserLname: "Officer", Email: "rex@example.edu", RoleID: models.RoleOfficer, CreateAt: &now}
	mustCreate(t, db, &f.user)
	mustCreate(t, db, &f.reviewer)

	f.department = models.Department{DepartmentName: "Computer Science", IsActive: true, CreateAt: &now}
	mustCreate(t, db, &f.department)

	f.quota = models.Quota{
		DepartmentID:     f.department.DepartmentID,
		FiscalYear:       2025,
		NumProjects:      3,
		NumberConference: 2,
		NumberPaper:      2,
		AllocatedBudget:  100000000,
		CreatedBy:        f.reviewer.UserID,
		CreateAt:         &now,
	}
	mustCreate(t, db, &f.quota)

	f.project = models.Project{
		DepartmentID:   f.department.DepartmentID,
		QuotaID:        f.quota.QuotaID,
		ProjectName:    "Distributed Ledgers",
		ProjectType:    models.ProjectTypeResearch,
		ApprovedBudget: 100000000,
		CreatedBy:      f.reviewer.UserID,
		CreateAt:       &now,
	}
	mustCreate(t, db, &f.project)

	f.phase = models.ProjectPhase{
		ProjectID:  f.project.ProjectID,
		Title:      "Phase 1",
		PhaseOrder: 1,
		Status:     models.PhaseInProgress,
		CreateAt:   &now,
	}
	mustCreate(t, db, &f.phase)

	f.journal = models.Journal{
		ProjectID:       f.project.ProjectID,
		JournalName:     "Journal of Systems",
		PublisherStatus: models.SubmissionApproved,
		CreateAt:        &now,
	}
	mustCreate(t, db, &f.journal)

	f.conference = models.Conference{
		ProjectID:        f.project.ProjectID,
		ConferenceName:   "SysConf 2025",
		SubmissionStatus: models.SubmissionApproved,
		CreateAt:         &now,
	}
	mustCreate(t, db, &f.conference)

	return f
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed to seed %T: %v", value, err)
	}
}

func (f *fixture) reloadProject(t *testing.T) models.Project {
	t.Helper()
	var project models.Project
	if err := f.db.First(&project, f.project.ProjectID).Error; err != nil {
		t.Fatalf("failed to reload project: %v", err)
	}
	return project
}

func (f *fixture) reloadRequest(t *testing.T, id int) models.DisbursementRequest {
	t.Helper()
	var request models.DisbursementRequest
	if err := f.db.Preload("Documents").First(&request, id).Error; err != nil {
		t.Fatalf("failed to reload request %d: %v", id, err)
	}
	return request
}

// uploadFile builds a real multipart.FileHeader the way gin would hand one
// to the controller.
func uploadFile(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", name)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("failed to read multipart form: %v", err)
	}
	files := form.File["files"]
	if len(files) != 1 {
		t.Fatalf("expected 1 file header, got %d", len(files))
	}
	return files[0]
}

// failingStore simulates an unreachable document store.
type failingStore struct{}

func (failingStore) Save(int, *multipart.FileHeader) (*StoredDocument, error) {
	return nil, errors.New("store unavailable")
}

// flakyStore succeeds for the first okSaves uploads, then fails, simulating
// a store that dies partway through a batch.
type flakyStore struct {
	inner   DocumentStore
	okSaves int
	calls   int
}

func (s *flakyStore) Save(requestID int, file *multipart.FileHeader) (*StoredDocument, error) {
	s.calls++
	if s.calls > s.okSaves {
		return nil, errors.New("store unavailable")
	}
	return s.inner.Save(requestID, file)
}
