//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package corp

import (
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/gen"
	"golang.org/x/exp/slices"
)

// UnknownFieldError - asked for a covariate that the table does not have
type UnknownFieldError struct {
	Field  string
	Fields []string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown covariate '%s' (known: %v)", e.Field, e.Fields)
}

// Docvars - the covariate table: one row per document, every value a string
type Docvars struct {
	fields []string
	rows   [][]string
	index  map[string]int
}

// NewDocvars - build a table; every row is copied and must be as wide as fields
func NewDocvars(fields []string, rows [][]string) (*Docvars, error) {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := idx[f]; dup {
			return nil, fmt.Errorf("duplicate covariate name '%s'", f)
		}
		idx[f] = i
	}

	cp := make([][]string, len(rows))
	for i, r := range rows {
		if len(r) != len(fields) {
			return nil, fmt.Errorf("covariate row %d has %d values; want %d", i, len(r), len(fields))
		}
		cp[i] = slices.Clone(r)
	}

	return &Docvars{fields: slices.Clone(fields), rows: cp, index: idx}, nil
}

// EmptyDocvars - n rows and no fields
func EmptyDocvars(n int) *Docvars {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{}
	}
	return &Docvars{fields: []string{}, rows: rows, index: map[string]int{}}
}

func (d *Docvars) NRows() int { return len(d.rows) }
func (d *Docvars) Fields() []string { return slices.Clone(d.fields) }
func (d *Docvars) Has(f string) bool {
	_, ok := d.index[f]
	return ok
}

func (d *Docvars) col(field string) (int, error) {
	c, ok := d.index[field]
	if !ok {
		return 0, &UnknownFieldError{Field: field, Fields: d.Fields()}
	}
	return c, nil
}

// Get - the value of field for one document
func (d *Docvars) Get(field string, doc int) (string, error) {
	c, err := d.col(field)
	if err != nil {
		return "", err
	}
	if doc < 0 || doc >= len(d.rows) {
		return "", fmt.Errorf("document %d out of range [0, %d)", doc, len(d.rows))
	}
	return d.rows[doc][c], nil
}

// Column - every document's value for a field, in document order
func (d *Docvars) Column(field string) ([]string, error) {
	c, err := d.col(field)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(d.rows))
	for i := range d.rows {
		out[i] = d.rows[i][c]
	}
	return out, nil
}

// Levels - the sorted distinct values of a field; i.e., the field as a factor
func (d *Docvars) Levels(field string) ([]string, error) {
	cc, err := d.Column(field)
	if err != nil {
		return nil, err
	}
	return gen.Unique(cc), nil
}

// Equals - a boolean partition of the documents: field == value
func (d *Docvars) Equals(field string, value string) ([]bool, error) {
	cc, err := d.Column(field)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(cc))
	for i := range cc {
		out[i] = cc[i] == value
	}
	return out, nil
}

// Subset - a new table with only the listed rows, in the listed order
func (d *Docvars) Subset(idx []int) (*Docvars, error) {
	rows := make([][]string, len(idx))
	for i, j := range idx {
		if j < 0 || j >= len(d.rows) {
			return nil, fmt.Errorf("document %d out of range [0, %d)", j, len(d.rows))
		}
		rows[i] = d.rows[j]
	}
	return NewDocvars(d.fields, rows)
}
