package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"fund-ledger-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Decision is a reviewer's verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// DisbursementService owns the request lifecycle: creation, document
// attachment, decision and payout, plus the ledger postings each transition
// triggers. Every mutation runs in a single transaction; per-owner rows are
// locked on MySQL so two concurrent creates cannot both pass the duplicate
// check.
type DisbursementService struct {
	db    *gorm.DB
	store DocumentStore
}

// NewDisbursementService wires the service to a database and document store.
func NewDisbursementService(db *gorm.DB, store DocumentStore) *DisbursementService {
	return &DisbursementService{db: db, store: store}
}

// CreateRequestInput carries everything needed for the first phase of the
// two-phase submission. FieldValues may propose values for the owner's
// once-settable fields; they are staged on the request and applied only on
// approval.
type CreateRequestInput struct {
	Kind            models.RequestKind
	OwnerEntityID   int
	RequesterID     int
	RequestedAmount float64
	Description     string
	FieldValues     map[string]string
}

// CreateRequestResult is the outcome of CreateRequest. BudgetWarning is set
// when the requested amount exceeds the project's remaining budget; the
// request is still created.
type CreateRequestResult struct {
	Request       *models.DisbursementRequest `json:"request"`
	BudgetWarning string                      `json:"budget_warning,omitempty"`
}

// fundingFields lists the stageable once-settable fields per request kind.
// The bool marks fields that must hold a value after merging the staged
// values with whatever the owner already has locked in.
var fundingFields = map[models.RequestKind]map[string]bool{
	models.KindConferenceFunding: {
		"location":          true,
		"acceptance_date":   false,
		"presentation_date": false,
	},
	models.KindJournalFunding: {
		"doi_number":       true,
		"acceptance_date":  false,
		"publication_date": false,
	},
}

// CreateRequest persists a new pending request and returns it. No budget is
// posted here; spent_budget moves only on approval. Over-budget phase
// requests go through with a warning instead of a hard failure.
func (s *DisbursementService) CreateRequest(in CreateRequestInput) (*CreateRequestResult, error) {
	if !models.ValidRequestKind(in.Kind) {
		return nil, NewValidationError("kind", "unknown request kind")
	}
	if in.RequestedAmount <= 0 {
		return nil, NewValidationError("requested_amount", "must be greater than zero")
	}

	result := &CreateRequestResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		owner, err := loadOwner(tx, in.Kind, in.OwnerEntityID)
		if err != nil {
			return err
		}

		// Conference/journal funding allows at most one approved request
		// per owner. Pending duplicates are allowed; approval re-checks.
		if requiresSingleApproval(in.Kind) {
			var count int64
			if err := tx.Model(&models.DisbursementRequest{}).
				Where("kind = ? AND owner_entity_id = ? AND status = ? AND delete_at IS NULL",
					in.Kind, in.OwnerEntityID, models.RequestApproved).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateApprovedRequest
			}
		}

		staged, err := stageFieldValues(in.Kind, owner, in.FieldValues)
		if err != nil {
			return err
		}

		if in.RequestedAmount > owner.project.ApprovedBudget-owner.project.SpentBudget {
			result.BudgetWarning = fmt.Sprintf(
				"requested amount %.2f exceeds remaining project budget %.2f",
				in.RequestedAmount, owner.project.ApprovedBudget-owner.project.SpentBudget)
		}

		now := time.Now()
		number, err := generateRequestNumber(tx, now)
		if err != nil {
			return err
		}
		request := models.DisbursementRequest{
			RequestNumber:   number,
			Kind:            in.Kind,
			OwnerEntityID:   in.OwnerEntityID,
			ProjectID:       owner.project.ProjectID,
			RequesterID:     in.RequesterID,
			RequestedAmount: in.RequestedAmount,
			Description:     in.Description,
			Status:          models.RequestPending,
			CreateAt:        &now,
			UpdateAt:        &now,
		}
		if len(staged) > 0 {
			raw, err := json.Marshal(staged)
			if err != nil {
				return err
			}
			encoded := string(raw)
			request.FieldValues = &encoded
		}

		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		result.Request = &request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AttachDocuments is the second phase of submission. It only works while the
// request is pending, and it can be retried: a crash between CreateRequest
// and a first successful upload leaves a valid zero-document request behind.
// The pending check and the inserts share a transaction, so a concurrent
// decision cannot slip between them; a failed batch leaves no document rows
// behind and the caller retries the whole batch against the same request id.
func (s *DisbursementService) AttachDocuments(requestID int, uploaderID int, documentTypeID *int, files []*multipart.FileHeader) ([]models.RequestDocument, error) {
	if len(files) == 0 {
		return nil, NewValidationError("files", "at least one file is required")
	}

	var attached []models.RequestDocument

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.DisbursementRequest
		if err := forUpdate(tx).
			Where("request_id = ? AND delete_at IS NULL", requestID).
			First(&request).Error; err != nil {
			return err
		}
		if request.IsDecided() {
			return ErrRequestNotPending
		}

		if documentTypeID != nil {
			var known int64
			if err := tx.Model(&models.DocumentType{}).
				Where("document_type_id = ? AND delete_at IS NULL", *documentTypeID).
				Count(&known).Error; err != nil {
				return err
			}
			if known == 0 {
				return NewValidationError("document_type_id", "unknown document type")
			}
		}

		for _, file := range files {
			stored, err := s.store.Save(requestID, file)
			if err != nil {
				return fmt.Errorf("failed to store %s: %w", file.Filename, err)
			}

			doc := models.RequestDocument{
				RequestID:      requestID,
				DocumentTypeID: documentTypeID,
				FileName:       stored.FileName,
				StoredPath:     stored.StoredPath,
				URL:            stored.URL,
				FileSize:       stored.FileSize,
				UploadedBy:     uploaderID,
				UploadedAt:     stored.UploadedAt,
			}
			if err := tx.Create(&doc).Error; err != nil {
				return err
			}
			attached = append(attached, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attached, nil
}

// Decide moves a pending request to approved or rejected. Approval posts the
// amount to the owning project (and phase), applies the staged once-settable
// values, and locks the owner's funding amount if it was still unset. The
// status check, status write and budget posting share one transaction, so a
// double-click on approve cannot post twice.
func (s *DisbursementService) Decide(requestID int, decision Decision, reviewerID int, comment string) (*models.DisbursementRequest, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, NewValidationError("decision", "must be approve or reject")
	}
	if decision == DecisionReject && comment == "" {
		return nil, NewValidationError("comment", "required when rejecting")
	}

	var decided models.DisbursementRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.DisbursementRequest
		if err := forUpdate(tx).
			Where("request_id = ? AND delete_at IS NULL", requestID).
			First(&request).Error; err != nil {
			return err
		}
		if request.IsDecided() {
			return ErrAlreadyDecided
		}

		now := time.Now()
		updates := map[string]interface{}{
			"approver_id": reviewerID,
			"approved_at": now,
			"update_at":   now,
		}
		if decision == DecisionApprove {
			updates["status"] = models.RequestApproved
		} else {
			updates["status"] = models.RequestRejected
			updates["rejection_reason"] = comment
		}

		// Status-guarded write: the WHERE clause is the decide-once
		// barrier even without the row lock above.
		res := tx.Model(&models.DisbursementRequest{}).
			Where("request_id = ? AND status = ?", requestID, models.RequestPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyDecided
		}

		if decision == DecisionApprove {
			if err := s.applyApproval(tx, &request, reviewerID, now); err != nil {
				return err
			}
		}

		if err := tx.Preload("Documents").
			Where("request_id = ?", requestID).
			First(&decided).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifyDecision(s.db, &decided)
	return &decided, nil
}

// applyApproval performs the ledger side of an approval inside the decide
// transaction.
func (s *DisbursementService) applyApproval(tx *gorm.DB, request *models.DisbursementRequest, reviewerID int, now time.Time) error {
	// Two pending funding requests may coexist, but both must never end
	// up approved. Re-check under the transaction before posting.
	if requiresSingleApproval(request.Kind) {
		var count int64
		if err := tx.Model(&models.DisbursementRequest{}).
			Where("kind = ? AND owner_entity_id = ? AND status = ? AND request_id <> ? AND delete_at IS NULL",
				request.Kind, request.OwnerEntityID, models.RequestApproved, request.RequestID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateApprovedRequest
		}
	}

	if err := tx.Model(&models.Project{}).
		Where("project_id = ?", request.ProjectID).
		UpdateColumns(map[string]interface{}{
			"spent_budget": gorm.Expr("spent_budget + ?", request.RequestedAmount),
			"update_at":    now,
		}).Error; err != nil {
		return err
	}

	if request.Kind == models.KindProjectPhase {
		if err := tx.Model(&models.ProjectPhase{}).
			Where("phase_id = ?", request.OwnerEntityID).
			UpdateColumns(map[string]interface{}{
				"spent_budget": gorm.Expr("spent_budget + ?", request.RequestedAmount),
				"update_at":    now,
			}).Error; err != nil {
			return err
		}
	}

	if err := applyStagedValues(tx, request, now); err != nil {
		return err
	}

	projectID := request.ProjectID
	requestID := request.RequestID
	entry := models.LedgerEntry{
		EntryType:  models.EntryApproval,
		ProjectID:  &projectID,
		RequestID:  &requestID,
		Amount:     request.RequestedAmount,
		RecordedBy: reviewerID,
		Note:       fmt.Sprintf("approved %s request %s", request.Kind, request.RequestNumber),
		CreateAt:   &now,
	}
	return tx.Create(&entry).Error
}

// applyStagedValues writes the request's staged once-settable values onto
// the owner entity and freezes the funding amount to the approved amount if
// it was still open. Each field goes through the lock policy again: values
// locked since creation silently keep the stored value.
func applyStagedValues(tx *gorm.DB, request *models.DisbursementRequest, now time.Time) error {
	staged := request.StagedFieldValues()

	switch request.Kind {
	case models.KindConferenceFunding:
		var conf models.Conference
		if err := forUpdate(tx).
			Where("conference_id = ? AND delete_at IS NULL", request.OwnerEntityID).
			First(&conf).Error; err != nil {
			return err
		}
		conf.Location, _ = MergeText(conf.Location, staged["location"])
		conf.AcceptanceDate, _ = MergeDate(conf.AcceptanceDate, ParseLockDate(staged["acceptance_date"]))
		conf.PresentationDate, _ = MergeDate(conf.PresentationDate, ParseLockDate(staged["presentation_date"]))
		conf.FundingAmount, _ = MergeAmount(conf.FundingAmount, request.RequestedAmount)
		conf.UpdateAt = &now
		return tx.Save(&conf).Error

	case models.KindJournalFunding:
		var journal models.Journal
		if err := forUpdate(tx).
			Where("journal_id = ? AND delete_at IS NULL", request.OwnerEntityID).
			First(&journal).Error; err != nil {
			return err
		}
		journal.DOINumber, _ = MergeText(journal.DOINumber, staged["doi_number"])
		journal.AcceptanceDate, _ = MergeDate(journal.AcceptanceDate, ParseLockDate(staged["acceptance_date"]))
		journal.PublicationDate, _ = MergeDate(journal.PublicationDate, ParseLockDate(staged["publication_date"]))
		journal.FundingAmount, _ = MergeAmount(journal.FundingAmount, request.RequestedAmount)
		journal.UpdateAt = &now
		return tx.Save(&journal).Error
	}
	return nil
}

// RecordPayout posts a payout ledger entry against an approved request and
// advances the project's disbursed total. Payouts for a request may not sum
// past its approved amount.
func (s *DisbursementService) RecordPayout(requestID int, amount float64, recordedBy int, note string) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, NewValidationError("amount", "must be greater than zero")
	}

	var entry models.LedgerEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var request models.DisbursementRequest
		if err := forUpdate(tx).
			Where("request_id = ? AND delete_at IS NULL", requestID).
			First(&request).Error; err != nil {
			return err
		}
		if request.Status != models.RequestApproved {
			return ErrRequestNotApproved
		}

		var paid float64
		if err := tx.Model(&models.LedgerEntry{}).
			Where("request_id = ? AND entry_type = ?", requestID, models.EntryPayout).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&paid).Error; err != nil {
			return err
		}
		if paid+amount > request.RequestedAmount {
			return NewValidationError("amount", "payouts would exceed the approved amount")
		}

		now := time.Now()
		if err := tx.Model(&models.Project{}).
			Where("project_id = ?", request.ProjectID).
			UpdateColumns(map[string]interface{}{
				"disbursed_amount": gorm.Expr("disbursed_amount + ?", amount),
				"update_at":        now,
			}).Error; err != nil {
			return err
		}

		projectID := request.ProjectID
		entry = models.LedgerEntry{
			EntryType:  models.EntryPayout,
			ProjectID:  &projectID,
			RequestID:  &requestID,
			Amount:     amount,
			RecordedBy: recordedBy,
			Note:       note,
			CreateAt:   &now,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// PendingRequests returns every pending request, newest first.
func (s *DisbursementService) PendingRequests() ([]models.DisbursementRequest, error) {
	var requests []models.DisbursementRequest
	err := s.db.Preload("Documents").Preload("Requester").
		Where("status = ? AND delete_at IS NULL", models.RequestPending).
		Order("create_at DESC").
		Find(&requests).Error
	return requests, err
}

// GetRequest loads one request with its documents.
func (s *DisbursementService) GetRequest(requestID int) (*models.DisbursementRequest, error) {
	var request models.DisbursementRequest
	err := s.db.Preload("Documents").Preload("Requester").
		Where("request_id = ? AND delete_at IS NULL", requestID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

/* -------------------- owner resolution -------------------- */

// ownerRef is the resolved target of a request: the entity row the request
// draws against plus the project whose budget it consumes.
type ownerRef struct {
	project    models.Project
	conference *models.Conference
	journal    *models.Journal
}

func loadOwner(tx *gorm.DB, kind models.RequestKind, ownerEntityID int) (*ownerRef, error) {
	ref := &ownerRef{}

	switch kind {
	case models.KindProjectPhase:
		var phase models.ProjectPhase
		if err := forUpdate(tx).
			Where("phase_id = ? AND delete_at IS NULL", ownerEntityID).
			First(&phase).Error; err != nil {
			return nil, ownerLookupError(err)
		}
		if err := forUpdate(tx).
			Where("project_id = ? AND delete_at IS NULL", phase.ProjectID).
			First(&ref.project).Error; err != nil {
			return nil, ownerLookupError(err)
		}

	case models.KindConferenceExpense, models.KindConferenceFunding:
		var conf models.Conference
		if err := forUpdate(tx).
			Where("conference_id = ? AND delete_at IS NULL", ownerEntityID).
			First(&conf).Error; err != nil {
			return nil, ownerLookupError(err)
		}
		if conf.SubmissionStatus != models.SubmissionApproved {
			return nil, ErrInvalidOwnerState
		}
		ref.conference = &conf
		if err := forUpdate(tx).
			Where("project_id = ? AND delete_at IS NULL", conf.ProjectID).
			First(&ref.project).Error; err != nil {
			return nil, ownerLookupError(err)
		}

	case models.KindJournalFunding:
		var journal models.Journal
		if err := forUpdate(tx).
			Where("journal_id = ? AND delete_at IS NULL", ownerEntityID).
			First(&journal).Error; err != nil {
			return nil, ownerLookupError(err)
		}
		if journal.PublisherStatus != models.SubmissionApproved {
			return nil, ErrInvalidOwnerState
		}
		ref.journal = &journal
		if err := forUpdate(tx).
			Where("project_id = ? AND delete_at IS NULL", journal.ProjectID).
			First(&ref.project).Error; err != nil {
			return nil, ownerLookupError(err)
		}
	}
	return ref, nil
}

func ownerLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewValidationError("owner_entity_id", "owner entity not found")
	}
	return err
}

// stageFieldValues validates the caller's proposed once-settable values
// against the owner's current state and keeps only the writable ones.
// Unknown field names and unparseable dates are validation errors; values
// targeting locked fields are dropped silently so callers need no
// special-case logic. Required fields must hold a value after the merge.
func stageFieldValues(kind models.RequestKind, owner *ownerRef, proposed map[string]string) (map[string]string, error) {
	allowed, ok := fundingFields[kind]
	if !ok {
		// Phase and expense requests carry no once-settable fields.
		return nil, nil
	}

	invalid := map[string]string{}
	for name := range proposed {
		if _, known := allowed[name]; !known {
			invalid[name] = "unknown field"
		}
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	staged := map[string]string{}
	missing := map[string]string{}

	for name, required := range allowed {
		current, isDate := ownerFieldState(kind, owner, name)
		value := proposed[name]

		if value != "" {
			if isDate {
				parsed := ParseLockDate(value)
				if parsed == nil {
					invalid[name] = "invalid date"
					continue
				}
				if CanSetDate(currentDate(current), parsed).Allowed {
					staged[name] = value
				}
			} else if CanSetText(currentText(current), value).Allowed {
				staged[name] = value
			}
		}

		if required && staged[name] == "" && !fieldStateSet(current) {
			missing[name] = "required"
		}
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	return staged, nil
}

/* -------------------- field state plumbing -------------------- */

// fieldState is the current stored value of one once-settable field, read
// at create time to evaluate the lock policy.
type fieldState struct {
	text string
	date *time.Time
}

func currentText(f fieldState) string     { return f.text }
func currentDate(f fieldState) *time.Time { return f.date }

func fieldStateSet(f fieldState) bool {
	return TextSet(f.text) || DateSet(f.date)
}

func ownerFieldState(kind models.RequestKind, owner *ownerRef, name string) (fieldState, bool) {
	switch kind {
	case models.KindConferenceFunding:
		switch name {
		case "location":
			return fieldState{text: owner.conference.Location}, false
		case "acceptance_date":
			return fieldState{date: owner.conference.AcceptanceDate}, true
		case "presentation_date":
			return fieldState{date: owner.conference.PresentationDate}, true
		}
	case models.KindJournalFunding:
		switch name {
		case "doi_number":
			return fieldState{text: owner.journal.DOINumber}, false
		case "acceptance_date":
			return fieldState{date: owner.journal.AcceptanceDate}, true
		case "publication_date":
			return fieldState{date: owner.journal.PublicationDate}, true
		}
	}
	return fieldState{}, false
}

/* -------------------- helpers -------------------- */

func requiresSingleApproval(kind models.RequestKind) bool {
	return kind == models.KindConferenceFunding || kind == models.KindJournalFunding
}

// forUpdate adds a pessimistic row lock where the dialect supports it.
// SQLite serializes writers on its own, so the clause is MySQL-only.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// generateRequestNumber builds DR-YYYYMMDD-XXXX from the request count of the
// local calendar day the number is formatted with. The request_number column
// carries a unique index, so two concurrent creates racing to the same number
// fail one of the transactions instead of minting a duplicate.
func generateRequestNumber(tx *gorm.DB, now time.Time) (string, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	if err := tx.Model(&models.DisbursementRequest{}).
		Where("create_at >= ? AND create_at < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("DR-%s-%04d", now.Format("20060102"), count+1), nil
}
