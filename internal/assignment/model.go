package assignment

import "time"

// Assignment is the responsible personnel of one case, unique by case id.
// Empty names are stored as such; assigning an empty name clears it.
type Assignment struct {
	CaseID        string    `gorm:"primaryKey;size:64" json:"case_id"`
	EngResp       string    `json:"eng_resp"`
	TecResp       string    `json:"tec_resp"`
	InspectorResp string    `json:"inspector_resp"`
	UpdatedBy     string    `json:"updated_by"`
	UpdatedAt     time.Time `json:"updated_at"`
}
