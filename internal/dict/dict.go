// Package dict interns column string values into dense integer ids and
// stores the encoded table as a row-major matrix, per spec.md §4.1.
package dict

// SuppressionID is the reserved value id standing for a suppressed value.
// decode(col, SuppressionID) always yields the suppression string.
const SuppressionID int32 = 0

// Dictionary interns strings to dense per-column integer ids. Ids are
// stable for the lifetime of a Dictionary: the same string always maps to
// the same id once interned. Each column numbers its own values from 1, so
// the same id denotes different strings in different columns.
type Dictionary struct {
	suppressionString string
	cols              []*columnDict
}

type columnDict struct {
	toID   map[string]int32
	toStr  []string // toStr[id] is the decoded string; index 0 is the suppression sentinel
}

// New creates a Dictionary over numCols columns. suppressionString is the
// value decode(col, 0) returns for every column.
func New(numCols int, suppressionString string) *Dictionary {
	d := &Dictionary{
		suppressionString: suppressionString,
		cols:              make([]*columnDict, numCols),
	}
	for i := range d.cols {
		d.cols[i] = &columnDict{
			toID:  make(map[string]int32),
			toStr: []string{suppressionString},
		}
	}
	return d
}

// NumColumns reports how many columns this Dictionary was built for.
func (d *Dictionary) NumColumns() int { return len(d.cols) }

// Intern returns the dense id for s in column col, allocating a new one if
// s has not been seen before in that column. The configured suppression
// string interns to id 0; every other string, the empty string included,
// gets an ordinary id.
func (d *Dictionary) Intern(col int, s string) int32 {
	c := d.cols[col]
	if s == d.suppressionString {
		return SuppressionID
	}
	if id, ok := c.toID[s]; ok {
		return id
	}
	id := int32(len(c.toStr))
	c.toID[s] = id
	c.toStr = append(c.toStr, s)
	return id
}

// Decode returns the string a value id represents in column col. Decoding
// SuppressionID always yields the configured suppression string.
func (d *Dictionary) Decode(col int, id int32) string {
	c := d.cols[col]
	if int(id) < 0 || int(id) >= len(c.toStr) {
		return d.suppressionString
	}
	return c.toStr[id]
}

// Cardinality returns the number of distinct ids interned for col,
// including the suppression sentinel.
func (d *Dictionary) Cardinality(col int) int {
	return len(d.cols[col].toStr)
}

// EncodedTable is the dense row-major matrix of interned ids: Rows[r][c].
type EncodedTable struct {
	Rows [][]int32
	Cols int
}

// Encode interns every cell of a string table column-by-column and returns
// the resulting dense matrix. Column order is preserved.
func Encode(d *Dictionary, rows [][]string) *EncodedTable {
	encoded := make([][]int32, len(rows))
	for r, row := range rows {
		encRow := make([]int32, len(row))
		for c, val := range row {
			encRow[c] = d.Intern(c, val)
		}
		encoded[r] = encRow
	}
	return &EncodedTable{Rows: encoded, Cols: d.NumColumns()}
}

// N returns the row count of the encoded table.
func (t *EncodedTable) N() int { return len(t.Rows) }
