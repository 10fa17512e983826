package models

import "time"

// LedgerEntryType classifies a ledger posting.
type LedgerEntryType string

const (
	// EntryApproval is posted when a disbursement request is approved.
	EntryApproval LedgerEntryType = "approval"
	// EntryPayout is posted when approved money is physically paid out.
	EntryPayout LedgerEntryType = "payout"
	// EntryAdjustment is posted when a quota's allocated budget changes.
	EntryAdjustment LedgerEntryType = "adjustment"
)

// LedgerEntry represents the ledger_entries table, the append-only history
// behind every budget counter. Entries are never updated or deleted.
type LedgerEntry struct {
	EntryID    int             `gorm:"primaryKey;column:entry_id" json:"entry_id"`
	EntryType  LedgerEntryType `gorm:"column:entry_type" json:"entry_type"`
	QuotaID    *int            `gorm:"column:quota_id" json:"quota_id,omitempty"`
	ProjectID  *int            `gorm:"column:project_id" json:"project_id,omitempty"`
	RequestID  *int            `gorm:"column:request_id" json:"request_id,omitempty"`
	Amount     float64         `gorm:"column:amount" json:"amount"`
	RecordedBy int             `gorm:"column:recorded_by" json:"recorded_by"`
	Note       string          `gorm:"column:note" json:"note"`
	CreateAt   *time.Time      `gorm:"column:create_at" json:"create_at"`
}

// TableName overrides the table name for LedgerEntry.
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
