package repository

import "strings"

// setBuilder assembles the SET clause of a partial UPDATE from optional
// fields.  Columns are appended in call order so generated SQL is
// deterministic.
type setBuilder struct {
	cols []string
	args []interface{}
}

// add appends "col = ?" with the given value.
func (b *setBuilder) add(col string, v interface{}) {
	b.cols = append(b.cols, col+" = ?")
	b.args = append(b.args, v)
}

// empty reports whether no column was added.
func (b *setBuilder) empty() bool { return len(b.cols) == 0 }

// clause returns the joined SET fragment.
func (b *setBuilder) clause() string { return strings.Join(b.cols, ", ") }
