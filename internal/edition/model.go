package edition

import "time"

// Edition is the current value of one editable field of a case. It is a
// projection of the history: at most one row per (case, field).
type Edition struct {
	CaseID    string    `gorm:"primaryKey;size:64" json:"case_id"`
	Field     string    `gorm:"primaryKey;size:64" json:"field"`
	Value     string    `json:"value"`
	UpdatedBy string    `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HistoryEntry is one append-only audit record. Rows are never updated or
// deleted.
type HistoryEntry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CaseID    string    `gorm:"index;size:64;not null" json:"case_id"`
	Field     string    `gorm:"size:64;not null" json:"field"`
	Value     string    `json:"value"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TimestampLayout is how history timestamps are shown to people.
const TimestampLayout = "2006-01-02 15:04:05"
