package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fund-ledger-api/config"
	"fund-ledger-api/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newStatusRouter swaps the global DB for an in-memory one and mounts the
// status decision routes behind a stub auth context.
func newStatusRouter(t *testing.T) *gin.Engine {
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

	if err := db.AutoMigrate(&models.Conference{}, &models.Journal{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	config.DB = db

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Set("roleID", models.RoleOfficer)
		c.Next()
	})
	router.PATCH("/conferences/:id/submission-status", SetConferenceSubmissionStatus)
	router.PATCH("/journals/:id/publisher-status", SetJournalPublisherStatus)
	return router
}

func patchStatus(t *testing.T, router *gin.Engine, url, status string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPatch, url, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetConferenceSubmissionStatusDecidesOnce(t *testing.T) {
	router := newStatusRouter(t)

	conference := models.Conference{
		ProjectID:        1,
		ConferenceName:   "SysConf 2025",
		SubmissionStatus: models.SubmissionPending,
	}
	if err := config.DB.Create(&conference).Error; err != nil {
		t.Fatalf("failed to seed conference: %v", err)
	}

	url := "/conferences/1/submission-status"
	if w := patchStatus(t, router, url, "approved"); w.Code != http.StatusOK {
		t.Fatalf("first decision should succeed, got %d: %s", w.Code, w.Body.String())
	}

	// A second officer racing in gets a conflict, not a silent overwrite.
	if w := patchStatus(t, router, url, "rejected"); w.Code != http.StatusConflict {
		t.Fatalf("second decision should conflict, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Conference
	if err := config.DB.First(&reloaded, conference.ConferenceID).Error; err != nil {
		t.Fatalf("failed to reload conference: %v", err)
	}
	if reloaded.SubmissionStatus != models.SubmissionApproved {
		t.Fatalf("first decision must stand, got %s", reloaded.SubmissionStatus)
	}
}

func TestSetJournalPublisherStatusDecidesOnce(t *testing.T) {
	router := newStatusRouter(t)

	journal := models.Journal{
		ProjectID:       1,
		JournalName:     "Journal of Systems",
		PublisherStatus: models.SubmissionPending,
	}
	if err := config.DB.Create(&journal).Error; err != nil {
		t.Fatalf("failed to seed journal: %v", err)
	}

	url := "/journals/1/publisher-status"
	if w := patchStatus(t, router, url, "rejected"); w.Code != http.StatusOK {
		t.Fatalf("first decision should succeed, got %d: %s", w.Code, w.Body.String())
	}
	if w := patchStatus(t, router, url, "approved"); w.Code != http.StatusConflict {
		t.Fatalf("second decision should conflict, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Journal
	if err := config.DB.First(&reloaded, journal.JournalID).Error; err != nil {
		t.Fatalf("failed to reload journal: %v", err)
	}
	if reloaded.PublisherStatus != models.SubmissionRejected {
		t.Fatalf("first decision must stand, got %s", reloaded.PublisherStatus)
	}
}

func TestSetSubmissionStatusRejectsPendingValue(t *testing.T) {
	router := newStatusRouter(t)

	conference := models.Conference{
		ProjectID:        1,
		ConferenceName:   "SysConf 2025",
		SubmissionStatus: models.SubmissionPending,
	}
	if err := config.DB.Create(&conference).Error; err != nil {
		t.Fatalf("failed to seed conference: %v", err)
	}

	w := patchStatus(t, router, "/conferences/1/submission-status", "pending")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("pending is not a decision, got %d: %s", w.Code, w.Body.String())
	}
}
