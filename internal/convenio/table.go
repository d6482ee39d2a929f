package convenio

import (
	"encoding/csv"
	"io"
	"sort"
	"strings"
)

// Table is the consolidated, session-scoped result of an ingestion. It is
// treated as immutable: filters return a new Table sharing no mutable
// state with the source.
type Table struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// HasColumn reports whether the column is part of the table.
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Find returns the first record whose identity matches id.
func (t *Table) Find(id string) (*Record, bool) {
	id = stripFloatArtifact(strings.TrimSpace(id))
	for i := range t.Records {
		if t.Records[i].ID() == id {
			return &t.Records[i], true
		}
	}
	return nil, false
}

// Distinct returns the sorted distinct non-blank values of a column.
func (t *Table) Distinct(column string) []string {
	if !t.HasColumn(column) {
		return []string{}
	}
	seen := make(map[string]struct{})
	for i := range t.Records {
		if v, ok := t.Records[i].Value(column); ok {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Page returns the records of the 1-based page.
func (t *Table) Page(page, pageSize int) []Record {
	start := (page - 1) * pageSize
	if start < 0 || start >= len(t.Records) {
		return []Record{}
	}
	end := start + pageSize
	if end > len(t.Records) {
		end = len(t.Records)
	}
	return t.Records[start:end]
}

// WriteCSV writes the table with a header row in column order.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	row := make([]string, len(t.Columns))
	for i := range t.Records {
		for j, c := range t.Columns {
			row[j], _ = t.Records[i].Value(c)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MissingRequired lists the required fields not among the given columns.
func MissingRequired(columns []string) []string {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c] = true
	}
	missing := []string{}
	for _, f := range Fields {
		if f.Required && !have[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// stripFloatArtifact drops the ".0" a value picks up after passing through
// a float column upstream.
func stripFloatArtifact(s string) string {
	return strings.TrimSuffix(s, ".0")
}
