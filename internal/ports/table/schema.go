package table

import "strings"

// Schema is the canonical column set of a table plus the legacy spellings
// that are renamed on load.
type Schema struct {
	Name    string
	Columns []string
	// Legacy maps a normalized legacy header to its canonical name.
	Legacy map[string]string
}

// NormalizeHeader lower-cases and trims a column name.
func NormalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Empty returns a table holding only the canonical header.
func (s Schema) Empty() *Table {
	return &Table{Columns: append([]string(nil), s.Columns...)}
}

// Conformed is the result of fitting a stored table to a schema.
type Conformed struct {
	Table *Table
	// Added lists canonical columns that were missing and backfilled empty.
	Added []string
	// Changed is set when the stored header differs from the canonical one,
	// meaning the table must be rewritten to complete the upgrade.
	Changed bool
}

// Conform normalizes headers, applies legacy renames, drops duplicate
// columns (first one wins), and reindexes every row to the canonical column
// order. Columns outside the schema are dropped and blank rows are skipped.
func (s Schema) Conform(t *Table) Conformed {
	source := make(map[string]int, len(t.Columns))
	for i, raw := range t.Columns {
		name := NormalizeHeader(raw)
		if canonical, ok := s.Legacy[name]; ok {
			name = canonical
		}
		if _, dup := source[name]; dup {
			continue
		}
		source[name] = i
	}

	res := Conformed{Table: s.Empty()}
	positions := make([]int, len(s.Columns))
	for i, col := range s.Columns {
		pos, ok := source[col]
		if !ok {
			pos = -1
			res.Added = append(res.Added, col)
		}
		positions[i] = pos
	}

	for _, row := range t.Rows {
		if IsBlank(row) {
			continue
		}
		out := make([]string, len(s.Columns))
		for i, pos := range positions {
			if pos >= 0 && pos < len(row) {
				out[i] = row[pos]
			}
		}
		res.Table.Rows = append(res.Table.Rows, out)
	}

	res.Changed = !sameHeader(t.Columns, s.Columns)
	return res
}

func sameHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
