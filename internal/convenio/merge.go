package convenio

import "strings"

// frame is the per-file intermediate table before consolidation.
type frame struct {
	columns []string
	records []Record
	unknown []string
	dropped int
}

func (f *frame) hasColumn(column string) bool {
	for _, c := range f.columns {
		if c == column {
			return true
		}
	}
	return false
}

// sheetColumnSuffix marks an unknown header renamed because it collides
// with a derived flag column.
const sheetColumnSuffix = " (planilha)"

func isFlagColumn(name string) bool {
	for _, c := range FlagColumns {
		if c == name {
			return true
		}
	}
	return false
}

// buildFrame renames the headers and normalizes every cell. Blank rows are
// skipped; rows without any identity are dropped and counted.
func buildFrame(s *sheet) *frame {
	f := &frame{}
	names := make([]string, len(s.header))
	seen := make(map[string]bool)
	for i, h := range s.header {
		name, ok := CanonicalColumn(h)
		if name == "" {
			continue
		}
		if !ok {
			if isFlagColumn(name) {
				name += sheetColumnSuffix
			}
			f.unknown = append(f.unknown, name)
		}
		names[i] = name
		if !seen[name] {
			seen[name] = true
			f.columns = append(f.columns, name)
		}
	}

	for _, row := range s.rows {
		var r Record
		for i, name := range names {
			if name == "" || i >= len(row) {
				continue
			}
			r.set(name, row[i])
		}
		if r.isBlank() {
			continue
		}
		if !r.hasIdentity() {
			f.dropped++
			continue
		}
		f.records = append(f.records, r)
	}
	return f
}

// Merge keys, in order of preference.
const (
	mergeOnInstrument = FieldInstrumentID
	mergeOnProposal   = FieldProposalID
	mergeConcat       = ""
)

// mergeKey picks the join column shared by both frames, or mergeConcat when
// they share none.
func mergeKey(acc, next *frame) string {
	switch {
	case acc.hasColumn(FieldInstrumentID) && next.hasColumn(FieldInstrumentID):
		return mergeOnInstrument
	case acc.hasColumn(FieldProposalID) && next.hasColumn(FieldProposalID):
		return mergeOnProposal
	}
	return mergeConcat
}

// mergeFrames full-outer-joins next into acc on the chosen key. Values
// already present in acc win; next only fills gaps. Rows of next whose key
// is blank or unmatched are appended. Like an outer join, every pair of
// matching rows yields one record, so repeated keys on either side keep all
// their rows whatever the upload order.
func mergeFrames(acc, next *frame) (*frame, string) {
	key := mergeKey(acc, next)

	out := &frame{
		columns: append([]string(nil), acc.columns...),
		records: append([]Record(nil), acc.records...),
		unknown: append(append([]string(nil), acc.unknown...), next.unknown...),
		dropped: acc.dropped + next.dropped,
	}
	for _, c := range next.columns {
		if !out.hasColumn(c) {
			out.columns = append(out.columns, c)
		}
	}

	if key == mergeConcat {
		out.records = append(out.records, next.records...)
		return out, key
	}

	index := make(map[string][]int, len(out.records))
	for i := range out.records {
		if k := joinValue(&out.records[i], key); k != "" {
			index[k] = append(index[k], i)
		}
	}
	// rows of acc as they were before the first match overlaid them
	base := make(map[string][]Record)
	for _, r := range next.records {
		k := joinValue(&r, key)
		matches := index[k]
		if k == "" || len(matches) == 0 {
			out.records = append(out.records, r)
			continue
		}
		if originals, seen := base[k]; seen {
			for _, o := range originals {
				c := o.clone()
				c.overlay(&r)
				out.records = append(out.records, c)
			}
			continue
		}
		originals := make([]Record, 0, len(matches))
		for _, i := range matches {
			originals = append(originals, out.records[i].clone())
			out.records[i].overlay(&r)
		}
		base[k] = originals
	}
	return out, key
}

func joinValue(r *Record, key string) string {
	v, _ := r.Value(key)
	return strings.TrimSpace(v)
}
