package convenio

import "strings"

// Role is the self-reported profile of the acting user. It gates the UI and
// is not a security boundary.
type Role string

const (
	RoleEngineer   Role = "engineer"
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
)

// ParseRole accepts the English role names and the Portuguese labels shown
// in the dashboard.
func ParseRole(s string) (Role, bool) {
	switch NormalizeHeader(s) {
	case "engineer", "engenheiro":
		return RoleEngineer, true
	case "technician", "tecnico":
		return RoleTechnician, true
	case "manager", "gestor":
		return RoleManager, true
	}
	return "", false
}

// Capability describes what the acting user may do on one case. The same
// listing and detail code serves every role; only this value differs.
type Capability struct {
	EditCase       bool `json:"edit_case"`
	EditInspection bool `json:"edit_inspection"`
	Assign         bool `json:"assign"`
}

// ReadOnly reports whether no edit is allowed.
func (c Capability) ReadOnly() bool {
	return !c.EditCase && !c.EditInspection && !c.Assign
}

// CapabilityFor computes the capability of user on record r. Managers may do
// everything; others may edit a case they are the engineer or technician
// of, and inspection data of a case they inspect.
func CapabilityFor(r *Record, user string, role Role) Capability {
	if role == RoleManager {
		return Capability{EditCase: true, EditInspection: true, Assign: true}
	}
	user = strings.TrimSpace(user)
	if user == "" {
		return Capability{}
	}
	named := func(v *string) bool {
		return v != nil && strings.TrimSpace(*v) == user
	}
	return Capability{
		EditCase:       named(r.EngResp) || named(r.TecResp),
		EditInspection: named(r.InspectorResp),
	}
}

// Editable field names and the capability each requires.
const (
	EditManualGlobalValue = "manual_global_value"
	EditObservations      = "observations"
	EditInspectionStatus  = "inspection_status"
	EditInspectionDate    = "inspection_date"
	EditInspectionNotes   = "inspection_notes"
)

var editableFields = map[string]bool{
	EditManualGlobalValue: false,
	EditObservations:      false,
	EditInspectionStatus:  true,
	EditInspectionDate:    true,
	EditInspectionNotes:   true,
}

// IsEditableField reports whether field may be recorded through an edit.
func IsEditableField(field string) bool {
	_, ok := editableFields[field]
	return ok
}

// CanEdit reports whether the capability allows editing field.
func (c Capability) CanEdit(field string) bool {
	inspection, ok := editableFields[field]
	if !ok {
		return false
	}
	if inspection {
		return c.EditInspection
	}
	return c.EditCase
}

// PanelComparison compares a manually entered global value with the one
// from the panel; a missing panel value counts as zero.
type PanelComparison struct {
	Panel  float64 `json:"panel"`
	Manual float64 `json:"manual"`
	Equal  bool    `json:"equal"`
}

// ComparePanel builds the comparison for r given the recorded manual value.
// Without a parsable manual value the panel value is used for both sides.
func ComparePanel(r *Record, manual string) PanelComparison {
	var panel float64
	if r.GlobalValue != nil {
		panel = *r.GlobalValue
	}
	m, ok := ParseNumber(manual)
	if !ok {
		m = panel
	}
	diff := m - panel
	return PanelComparison{Panel: panel, Manual: m, Equal: diff < 0.005 && diff > -0.005}
}
