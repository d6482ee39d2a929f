package convenio

import (
	"net/url"
	"strings"
)

// Range bounds a numeric column. Nil bounds are inactive.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r Range) active() bool { return r.Min != nil || r.Max != nil }

// Filter is a conjunction of optional constraints. Zero values impose no
// constraint, and constraints naming a column the table lacks are ignored.
type Filter struct {
	// InstrumentID is matched exactly after trimming; a trailing ".0" on
	// the query is dropped.
	InstrumentID string `json:"instrument_id,omitempty"`
	// Year is matched exactly with ".0" stripped on both sides.
	Year string `json:"year,omitempty"`
	// Search matches when any searchable column contains it.
	Search string `json:"q,omitempty"`
	// Contains maps a column to a case-insensitive substring.
	Contains map[string]string `json:"contains,omitempty"`
	// In maps a column to the accepted values; an empty list is ignored.
	In map[string][]string `json:"in,omitempty"`
	// Ranges maps a numeric column to its bounds.
	Ranges map[string]Range `json:"ranges,omitempty"`
	// Queues lists flag columns that must be true.
	Queues []string `json:"queues,omitempty"`
	// AssignedTo keeps records where the name is the engineer, technician
	// or inspector responsible.
	AssignedTo string `json:"assigned_to,omitempty"`
}

// SearchColumns are the columns consulted by the global search.
var SearchColumns = []string{
	FieldInstrumentID,
	FieldProposalID,
	FieldProcessNumber,
	FieldTaxID,
	FieldProponent,
	FieldObject,
}

type predicate func(r *Record) bool

// Apply returns the records of t matching every constraint, in table order.
func (f Filter) Apply(t *Table) *Table {
	preds := f.predicates(t)
	out := &Table{Columns: t.Columns, Records: make([]Record, 0, len(t.Records))}
	for i := range t.Records {
		if matchAll(preds, &t.Records[i]) {
			out.Records = append(out.Records, t.Records[i])
		}
	}
	return out
}

func matchAll(preds []predicate, r *Record) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

func (f Filter) predicates(t *Table) []predicate {
	var preds []predicate

	if q := stripFloatArtifact(strings.TrimSpace(f.InstrumentID)); q != "" && t.HasColumn(FieldInstrumentID) {
		preds = append(preds, func(r *Record) bool {
			v, _ := r.Value(FieldInstrumentID)
			return strings.TrimSpace(v) == q
		})
	}

	if q := stripFloatArtifact(strings.TrimSpace(f.Year)); q != "" && t.HasColumn(FieldYear) {
		preds = append(preds, func(r *Record) bool {
			v, _ := r.Value(FieldYear)
			return stripFloatArtifact(strings.TrimSpace(v)) == q
		})
	}

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		var cols []string
		for _, c := range SearchColumns {
			if t.HasColumn(c) {
				cols = append(cols, c)
			}
		}
		if len(cols) > 0 {
			preds = append(preds, func(r *Record) bool {
				for _, c := range cols {
					if v, ok := r.Value(c); ok && strings.Contains(strings.ToLower(v), q) {
						return true
					}
				}
				return false
			})
		}
	}

	for col, q := range f.Contains {
		q = strings.ToLower(strings.TrimSpace(q))
		if q == "" || !t.HasColumn(col) {
			continue
		}
		preds = append(preds, func(r *Record) bool {
			v, ok := r.Value(col)
			return ok && strings.Contains(strings.ToLower(v), q)
		})
	}

	for col, values := range f.In {
		set := make(map[string]bool, len(values))
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				set[v] = true
			}
		}
		if len(set) == 0 || !t.HasColumn(col) {
			continue
		}
		preds = append(preds, func(r *Record) bool {
			v, _ := r.Value(col)
			return set[strings.TrimSpace(v)]
		})
	}

	for col, rg := range f.Ranges {
		if !rg.active() || !t.HasColumn(col) {
			continue
		}
		preds = append(preds, func(r *Record) bool {
			v, ok := r.Number(col)
			if !ok {
				return false
			}
			if rg.Min != nil && v < *rg.Min {
				return false
			}
			return rg.Max == nil || v <= *rg.Max
		})
	}

	for _, q := range f.Queues {
		if _, known := (Flags{}).Get(q); !known || !t.HasColumn(q) {
			continue
		}
		preds = append(preds, func(r *Record) bool {
			b, _ := r.Flags.Get(q)
			return b
		})
	}

	if name := strings.TrimSpace(f.AssignedTo); name != "" {
		preds = append(preds, func(r *Record) bool {
			for _, c := range []string{FieldEngResp, FieldTecResp, FieldInspectorResp} {
				if v, ok := r.Value(c); ok && strings.TrimSpace(v) == name {
					return true
				}
			}
			return false
		})
	}

	return preds
}

// ParseFilter reads a Filter from query parameters. Canonical field names
// select the policy of their kind: text fields take a substring, category
// and indicator fields take repeated values, numeric fields take
// <name>_min and <name>_max. Flags are passed as repeated "queue" values.
func ParseFilter(q url.Values) Filter {
	f := Filter{
		InstrumentID: q.Get(FieldInstrumentID),
		Year:         q.Get(FieldYear),
		Search:       q.Get("q"),
		Contains:     map[string]string{},
		In:           map[string][]string{},
		Ranges:       map[string]Range{},
		Queues:       q["queue"],
	}
	for _, fd := range Fields {
		switch fd.Kind {
		case KindText:
			if v := q.Get(fd.Name); v != "" {
				f.Contains[fd.Name] = v
			}
		case KindCategory, KindIndicator:
			if vs := q[fd.Name]; len(vs) > 0 {
				f.In[fd.Name] = vs
			}
		case KindNumber:
			rg := Range{Min: queryFloat(q, fd.Name+"_min"), Max: queryFloat(q, fd.Name+"_max")}
			if rg.active() {
				f.Ranges[fd.Name] = rg
			}
		case KindIdentity:
			if fd.Name == FieldProposalID {
				if v := q.Get(fd.Name); v != "" {
					f.In[fd.Name] = []string{stripFloatArtifact(strings.TrimSpace(v))}
				}
			}
		}
	}
	return f
}

func queryFloat(q url.Values, key string) *float64 {
	s := q.Get(key)
	if s == "" {
		return nil
	}
	if v, ok := ParseNumber(s); ok {
		return &v
	}
	return nil
}
