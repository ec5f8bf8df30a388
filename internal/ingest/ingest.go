//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"github.com/e-gun/NarrativeScope/internal/corp"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

//
// DELIMITED FILE --> CORPUS
//

// MissingColumnError - the text field is not in the header
type MissingColumnError struct {
	Field  string
	Header []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column '%s' not found in header %v", e.Field, e.Header)
}

// MalformedRowError - a row does not have as many fields as the header, or could not be parsed at all (Cause)
type MalformedRowError struct {
	Line  int
	Want  int
	Got   int
	Cause error
}

func (e *MalformedRowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("line %d is malformed: %v", e.Line, e.Cause)
	}
	return fmt.Sprintf("line %d has %d fields; the header has %d", e.Line, e.Got, e.Want)
}

func (e *MalformedRowError) Unwrap() error { return e.Cause }

// malformed - name the csv parser's complaints; anything else is an i/o failure
func malformed(err error, want int) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &MalformedRowError{Line: pe.Line, Want: want, Cause: pe.Err}
	}
	return fmt.Errorf("ingest: %w", err)
}

// Options - how to read the file
type Options struct {
	Delimiter rune
	Comment   rune   // 0 = no comment lines
	IDField   string // optional column holding document names
	TrimSpace bool
}

// DefaultOptions - comma separated, no comments, no id column
func DefaultOptions() Options {
	return Options{Delimiter: ',', TrimSpace: true}
}

// ReadFile - open a delimited file and build a corpus from it
func ReadFile(path string, textfield string, o Options) (*corp.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)
	return Read(f, textfield, o)
}

// Read - build a corpus from delimited data: one column holds the narrative; all of the others are covariates
func Read(r io.Reader, textfield string, o Options) (*corp.Corpus, error) {
	const (
		BOM = "\uFEFF"
	)

	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if !utf8.ValidRune(o.Delimiter) || o.Delimiter == '\r' || o.Delimiter == '\n' || o.Delimiter == '"' {
		return nil, fmt.Errorf("ingest: invalid delimiter %q", o.Delimiter)
	}

	cr := csv.NewReader(r)
	cr.Comma = o.Delimiter
	cr.Comment = o.Comment
	cr.FieldsPerRecord = -1 // we check the width ourselves so we can name the error
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MissingColumnError{Field: textfield, Header: nil}
	}
	if err != nil {
		return nil, malformed(err, 0)
	}

	for i := range header {
		if i == 0 {
			header[i] = strings.TrimPrefix(header[i], BOM)
		}
		header[i] = strings.TrimSpace(header[i])
	}

	tcol, icol := -1, -1
	for i, h := range header {
		if h == textfield {
			tcol = i
		}
		if o.IDField != "" && h == o.IDField {
			icol = i
		}
	}

	if tcol == -1 {
		return nil, &MissingColumnError{Field: textfield, Header: header}
	}
	if o.IDField != "" && icol == -1 {
		return nil, &MissingColumnError{Field: o.IDField, Header: header}
	}

	var fields []string
	var fcols []int
	for i, h := range header {
		if i == tcol || i == icol {
			continue
		}
		fields = append(fields, h)
		fcols = append(fcols, i)
	}

	var texts, names []string
	var rows [][]string

	for {
		rec, rerr := cr.Read()
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return nil, malformed(rerr, len(header))
		}

		if len(rec) != len(header) {
			line, _ := cr.FieldPos(0)
			return nil, &MalformedRowError{Line: line, Want: len(header), Got: len(rec)}
		}

		tx := rec[tcol]
		if o.TrimSpace {
			tx = strings.TrimSpace(tx)
		}
		texts = append(texts, tx)

		if icol != -1 {
			names = append(names, strings.TrimSpace(rec[icol]))
		}

		row := make([]string, len(fcols))
		for j, c := range fcols {
			row[j] = strings.TrimSpace(rec[c])
		}
		rows = append(rows, row)
	}

	if icol == -1 {
		names = corp.DefaultNames(len(texts))
	}

	dv, err := corp.NewDocvars(fields, rows)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	return corp.New(names, texts, dv)
}
