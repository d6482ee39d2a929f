package convenio

import "fmt"

// Kind drives both cell normalization at ingestion and the filter policy
// applied to a field.
type Kind int

const (
	// KindIdentity fields are kept as trimmed strings and matched exactly.
	KindIdentity Kind = iota
	// KindText fields are matched by case-insensitive containment.
	KindText
	// KindYear is text matched exactly after stripping a trailing ".0".
	KindYear
	// KindCategory fields are multi-select, matched by set membership.
	KindCategory
	// KindIndicator fields are normalized to "yes" / "no".
	KindIndicator
	// KindNumber fields are parsed with ParseNumber and matched by range.
	KindNumber
)

// Field describes one canonical column.
type Field struct {
	Name string
	Kind Kind
	// Required fields are reported when no uploaded file provides them.
	Required bool

	text func(*Record) **string
	num  func(*Record) **float64
}

func textField(name string, kind Kind, required bool, get func(*Record) **string) Field {
	return Field{Name: name, Kind: kind, Required: required, text: get}
}

func numberField(name string, required bool, get func(*Record) **float64) Field {
	return Field{Name: name, Kind: KindNumber, Required: required, num: get}
}

// Canonical field names referenced outside the registry.
const (
	FieldInstrumentID  = "instrument_id"
	FieldProposalID    = "proposal_id"
	FieldYear          = "year"
	FieldObject        = "object"
	FieldProcessNumber = "process_number"
	FieldTaxID         = "tax_id"
	FieldUF            = "uf"
	FieldProponent     = "proponent"
	FieldGlobalValue   = "global_value"
	FieldEngResp       = "eng_resp"
	FieldTecResp       = "tec_resp"
	FieldInspectorResp = "inspector_resp"
	FieldDisbursement  = "disbursement_gap"
	FieldLastPayment   = "last_payment_gap"
	FieldNoPayment150  = "no_payment_150"
)

// Fields is the fixed superset of canonical columns, in the order they are
// synthesized onto the consolidated table.
var Fields = []Field{
	textField(FieldInstrumentID, KindIdentity, true, func(r *Record) **string { return &r.InstrumentID }),
	textField(FieldProposalID, KindIdentity, true, func(r *Record) **string { return &r.ProposalID }),
	textField(FieldYear, KindYear, true, func(r *Record) **string { return &r.Year }),
	textField(FieldObject, KindText, true, func(r *Record) **string { return &r.Object }),
	textField(FieldProcessNumber, KindText, true, func(r *Record) **string { return &r.ProcessNumber }),
	textField(FieldTaxID, KindText, false, func(r *Record) **string { return &r.TaxID }),
	textField(FieldUF, KindCategory, true, func(r *Record) **string { return &r.UF }),
	textField("municipality", KindText, true, func(r *Record) **string { return &r.Municipality }),
	textField(FieldProponent, KindText, false, func(r *Record) **string { return &r.Proponent }),
	textField("parliamentarian", KindText, true, func(r *Record) **string { return &r.Parliamentarian }),
	numberField(FieldGlobalValue, true, func(r *Record) **float64 { return &r.GlobalValue }),
	numberField("transfer_value", false, func(r *Record) **float64 { return &r.TransferValue }),
	numberField("counterpart_value", false, func(r *Record) **float64 { return &r.CounterpartValue }),
	numberField("committed_value", false, func(r *Record) **float64 { return &r.CommittedValue }),
	numberField("disbursed_value", false, func(r *Record) **float64 { return &r.DisbursedValue }),
	numberField("account_balance", false, func(r *Record) **float64 { return &r.AccountBalance }),
	numberField("financial_execution", false, func(r *Record) **float64 { return &r.FinancialExecution }),
	textField("instrument_status", KindText, true, func(r *Record) **string { return &r.InstrumentStatus }),
	textField("sub_situation", KindText, false, func(r *Record) **string { return &r.SubSituation }),
	textField("contractual_situation", KindText, true, func(r *Record) **string { return &r.ContractualSituation }),
	textField("execution_status", KindText, false, func(r *Record) **string { return &r.ExecutionStatus }),
	textField("audit_status", KindText, false, func(r *Record) **string { return &r.AuditStatus }),
	textField("basic_project_situation", KindText, false, func(r *Record) **string { return &r.BasicProjectSituation }),
	textField("basic_project_analyst", KindText, false, func(r *Record) **string { return &r.BasicProjectAnalyst }),
	textField("basic_project_analysis_status", KindText, false, func(r *Record) **string { return &r.BasicProjectAnalysisStatus }),
	textField("execution_inspector", KindText, false, func(r *Record) **string { return &r.ExecutionInspector }),
	textField("convenente_action_status", KindText, false, func(r *Record) **string { return &r.ConvenenteActionStatus }),
	textField("works_status", KindText, false, func(r *Record) **string { return &r.WorksStatus }),
	textField("accountability_inspector", KindText, false, func(r *Record) **string { return &r.AccountabilityInspector }),
	textField("accountability_execution_status", KindText, false, func(r *Record) **string { return &r.AccountabilityExecStatus }),
	textField("accountability_works_status", KindText, false, func(r *Record) **string { return &r.AccountabilityWorksStatus }),
	textField("accountability_status", KindText, false, func(r *Record) **string { return &r.AccountabilityStatus }),
	textField(FieldDisbursement, KindCategory, false, func(r *Record) **string { return &r.DisbursementGap }),
	textField(FieldLastPayment, KindCategory, false, func(r *Record) **string { return &r.LastPaymentGap }),
	textField(FieldNoPayment150, KindIndicator, false, func(r *Record) **string { return &r.NoPayment150 }),
	textField(FieldEngResp, KindText, false, func(r *Record) **string { return &r.EngResp }),
	textField(FieldTecResp, KindText, false, func(r *Record) **string { return &r.TecResp }),
	textField(FieldInspectorResp, KindText, false, func(r *Record) **string { return &r.InspectorResp }),
}

var fieldByName = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		if _, dup := m[f.Name]; dup {
			panic(fmt.Sprintf("convenio: duplicate field %q", f.Name))
		}
		m[f.Name] = f
	}
	return m
}()

// LookupField returns the canonical field with the given name.
func LookupField(name string) (Field, bool) {
	f, ok := fieldByName[name]
	return f, ok
}
