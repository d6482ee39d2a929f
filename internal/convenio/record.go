package convenio

import (
	"strconv"
	"strings"
)

// Record is one row of the consolidated table. Every canonical column is an
// explicit field; nil means the value is missing in every source file.
type Record struct {
	InstrumentID *string `json:"instrument_id"`
	ProposalID   *string `json:"proposal_id"`

	Year            *string `json:"year"`
	Object          *string `json:"object"`
	ProcessNumber   *string `json:"process_number"`
	TaxID           *string `json:"tax_id"`
	UF              *string `json:"uf"`
	Municipality    *string `json:"municipality"`
	Proponent       *string `json:"proponent"`
	Parliamentarian *string `json:"parliamentarian"`

	InstrumentStatus     *string `json:"instrument_status"`
	SubSituation         *string `json:"sub_situation"`
	ContractualSituation *string `json:"contractual_situation"`
	ExecutionStatus      *string `json:"execution_status"`
	AuditStatus          *string `json:"audit_status"`

	BasicProjectSituation      *string `json:"basic_project_situation"`
	BasicProjectAnalyst        *string `json:"basic_project_analyst"`
	BasicProjectAnalysisStatus *string `json:"basic_project_analysis_status"`
	ExecutionInspector         *string `json:"execution_inspector"`
	ConvenenteActionStatus     *string `json:"convenente_action_status"`
	WorksStatus                *string `json:"works_status"`
	AccountabilityInspector    *string `json:"accountability_inspector"`
	AccountabilityExecStatus   *string `json:"accountability_execution_status"`
	AccountabilityWorksStatus  *string `json:"accountability_works_status"`
	AccountabilityStatus       *string `json:"accountability_status"`

	DisbursementGap *string `json:"disbursement_gap"`
	LastPaymentGap  *string `json:"last_payment_gap"`
	NoPayment150    *string `json:"no_payment_150"`

	EngResp       *string `json:"eng_resp"`
	TecResp       *string `json:"tec_resp"`
	InspectorResp *string `json:"inspector_resp"`

	GlobalValue        *float64 `json:"global_value"`
	TransferValue      *float64 `json:"transfer_value"`
	CounterpartValue   *float64 `json:"counterpart_value"`
	CommittedValue     *float64 `json:"committed_value"`
	DisbursedValue     *float64 `json:"disbursed_value"`
	AccountBalance     *float64 `json:"account_balance"`
	FinancialExecution *float64 `json:"financial_execution"`

	// Extra holds columns whose header matched no canonical field.
	Extra map[string]string `json:"extra,omitempty"`

	Flags Flags `json:"flags"`
}

// ID is the identity used for display and edit targeting: the instrument
// number when present, the proposal number otherwise.
func (r *Record) ID() string {
	if r.InstrumentID != nil && *r.InstrumentID != "" {
		return *r.InstrumentID
	}
	if r.ProposalID != nil {
		return *r.ProposalID
	}
	return ""
}

// Value renders the column as text. The boolean reports whether the value
// is present.
func (r *Record) Value(column string) (string, bool) {
	if f, ok := fieldByName[column]; ok {
		if f.num != nil {
			v := *f.num(r)
			if v == nil {
				return "", false
			}
			return strconv.FormatFloat(*v, 'f', -1, 64), true
		}
		v := *f.text(r)
		if v == nil {
			return "", false
		}
		return *v, true
	}
	if b, ok := r.Flags.Get(column); ok {
		return strconv.FormatBool(b), true
	}
	v, ok := r.Extra[column]
	return v, ok && v != ""
}

// Number returns the numeric value of the column, parsing text columns with
// ParseNumber.
func (r *Record) Number(column string) (float64, bool) {
	if f, ok := fieldByName[column]; ok && f.num != nil {
		v := *f.num(r)
		if v == nil {
			return 0, false
		}
		return *v, true
	}
	s, ok := r.Value(column)
	if !ok {
		return 0, false
	}
	return ParseNumber(s)
}

// clone copies r so that overlaying the copy leaves r untouched. Value
// pointers are shared since cells are never written through them.
func (r *Record) clone() Record {
	c := *r
	if r.Extra != nil {
		c.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

// overlay copies into r every value that is missing in r and present in o.
func (r *Record) overlay(o *Record) {
	for _, f := range Fields {
		if f.num != nil {
			dst, src := f.num(r), f.num(o)
			if *dst == nil && *src != nil {
				v := **src
				*dst = &v
			}
			continue
		}
		dst, src := f.text(r), f.text(o)
		if *dst == nil && *src != nil {
			v := **src
			*dst = &v
		}
	}
	for k, v := range o.Extra {
		if v == "" || r.Extra[k] != "" {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[k] = v
	}
}

// set stores a normalized cell into the column. It reports whether the
// column is canonical.
func (r *Record) set(column, raw string) bool {
	f, ok := fieldByName[column]
	if !ok {
		if v, present := cleanText(raw); present {
			if r.Extra == nil {
				r.Extra = make(map[string]string)
			}
			if r.Extra[column] == "" {
				r.Extra[column] = v
			}
		}
		return false
	}
	if f.num != nil {
		dst := f.num(r)
		if *dst != nil {
			return true
		}
		if v, ok := ParseNumber(raw); ok {
			*dst = &v
		}
		return true
	}
	dst := f.text(r)
	if *dst != nil {
		return true
	}
	var (
		v       string
		present bool
	)
	switch f.Kind {
	case KindIndicator:
		v, present = normalizeIndicator(raw)
	default:
		v, present = cleanText(raw)
	}
	if present {
		*dst = &v
	}
	return true
}

// hasIdentity reports whether at least one identity field is non-blank.
func (r *Record) hasIdentity() bool {
	return r.ID() != ""
}

// isBlank reports whether no canonical or extra value is present.
func (r *Record) isBlank() bool {
	for _, f := range Fields {
		if f.num != nil {
			if *f.num(r) != nil {
				return false
			}
			continue
		}
		if *f.text(r) != nil {
			return false
		}
	}
	return len(r.Extra) == 0
}

var missingSentinels = map[string]bool{
	"-": true, "—": true, "–": true, "--": true,
	"nan": true, "none": true, "null": true, "<na>": true,
}

// cleanText trims and collapses whitespace and maps dash sentinels to
// missing.
func cleanText(raw string) (string, bool) {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" || missingSentinels[strings.ToLower(s)] {
		return "", false
	}
	return s, true
}

// normalizeIndicator maps boolean-ish cells onto "yes" / "no".
func normalizeIndicator(raw string) (string, bool) {
	s, ok := cleanText(raw)
	if !ok {
		return "", false
	}
	switch NormalizeHeader(s) {
	case "sim", "s", "yes", "y", "true", "verdadeiro", "1", "x":
		return IndicatorYes, true
	case "nao", "n", "no", "false", "falso", "0":
		return IndicatorNo, true
	}
	return "", false
}

// Indicator vocabulary.
const (
	IndicatorYes = "yes"
	IndicatorNo  = "no"
)
