package models

import (
	"time"

	"gorm.io/gorm"
)

// DocumentType represents the document_types lookup table.
type DocumentType struct {
	DocumentTypeID   int        `gorm:"primaryKey;column:document_type_id" json:"document_type_id"`
	DocumentTypeName string     `gorm:"column:document_type_name" json:"document_type_name"`
	Code             string     `gorm:"column:code" json:"code"`
	DocumentOrder    int        `gorm:"column:document_order" json:"document_order"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// DocumentTypeCodes is the canonical set of attachment categories, in
// display order.
var DocumentTypeCodes = []string{
	"proposal",
	"disbursement",
	"council_decision",
	"receipt",
	"invoice",
	"acceptance_letter",
	"presentation_cert",
	"publication_proof",
	"travel_itinerary",
	"quotation",
	"contract",
	"progress_report",
	"other",
}

var documentTypeNames = map[string]string{
	"proposal":          "Project proposal",
	"disbursement":      "Disbursement form",
	"council_decision":  "Council decision",
	"receipt":           "Receipt",
	"invoice":           "Invoice",
	"acceptance_letter": "Acceptance letter",
	"presentation_cert": "Presentation certificate",
	"publication_proof": "Publication proof",
	"travel_itinerary":  "Travel itinerary",
	"quotation":         "Quotation",
	"contract":          "Contract",
	"progress_report":   "Progress report",
	"other":             "Other",
}

// SeedDocumentTypes inserts any attachment category missing from the lookup
// table. Runs at startup; existing rows are left untouched, so renames done
// by operators survive.
func SeedDocumentTypes(db *gorm.DB) error {
	for i, code := range DocumentTypeCodes {
		var count int64
		if err := db.Model(&DocumentType{}).
			Where("code = ?", code).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		now := time.Now()
		entry := DocumentType{
			DocumentTypeName: documentTypeNames[code],
			Code:             code,
			DocumentOrder:    i + 1,
			CreateAt:         &now,
			UpdateAt:         &now,
		}
		if err := db.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}

// RequestDocument represents the request_documents table. Rows are written
// once by the upload flow and never updated.
type RequestDocument struct {
	DocumentID     int        `gorm:"primaryKey;column:document_id" json:"document_id"`
	RequestID      int        `gorm:"column:request_id" json:"request_id"`
	DocumentTypeID *int       `gorm:"column:document_type_id" json:"document_type_id,omitempty"`
	FileName       string     `gorm:"column:file_name" json:"file_name"`
	StoredPath     string     `gorm:"column:stored_path" json:"stored_path"`
	URL            string     `gorm:"column:url" json:"url"`
	FileSize       int64      `gorm:"column:file_size" json:"file_size"`
	UploadedBy     int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt     time.Time  `gorm:"column:uploaded_at" json:"uploaded_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	DocumentType *DocumentType `gorm:"foreignKey:DocumentTypeID" json:"document_type,omitempty"`
}

// TableName overrides
func (DocumentType) TableName() string {
	return "document_types"
}

func (RequestDocument) TableName() string {
	return "request_documents"
}
