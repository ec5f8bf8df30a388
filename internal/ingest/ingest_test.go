//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package ingest

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const survey = "\uFEFFid,gender,text,urban\n" +
	"r1,male,I love my job and my salary,yes\n" +
	"r2,female,I hate my job,no\n"

func TestReadBuildsCorpus(t *testing.T) {
	c, err := Read(strings.NewReader(survey), "text", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if c.NDocs() != 2 {
		t.Fatalf("NDocs() = %d", c.NDocs())
	}
	if c.Text(1) != "I hate my job" {
		t.Errorf("Text(1) = %q", c.Text(1))
	}
	if !reflect.DeepEqual(c.Names(), []string{"text1", "text2"}) {
		t.Errorf("Names() = %v", c.Names())
	}
	if !reflect.DeepEqual(c.Docvars().Fields(), []string{"id", "gender", "urban"}) {
		t.Errorf("Fields() = %v", c.Docvars().Fields())
	}
	g, _ := c.Docvars().Column("gender")
	if !reflect.DeepEqual(g, []string{"male", "female"}) {
		t.Errorf("gender = %v", g)
	}
}

func TestReadIDField(t *testing.T) {
	o := DefaultOptions()
	o.IDField = "id"
	c, err := Read(strings.NewReader(survey), "text", o)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.Names(), []string{"r1", "r2"}) {
		t.Errorf("Names() = %v", c.Names())
	}
	if c.Docvars().Has("id") {
		t.Error("id column should not be a covariate")
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
		check func(error) bool
	}{
		{
			name:  "missing column",
			input: "gender,narrative\nmale,hello\n",
			field: "text",
			check: func(err error) bool {
				var e *MissingColumnError
				return errors.As(err, &e) && e.Field == "text" && len(e.Header) == 2
			},
		},
		{
			name:  "short row",
			input: "gender,text\nmale,hello\nfemale\n",
			field: "text",
			check: func(err error) bool {
				var e *MalformedRowError
				return errors.As(err, &e) && e.Line == 3 && e.Want == 2 && e.Got == 1
			},
		},
		{
			name:  "long row",
			input: "gender,text\nmale,hello,extra\n",
			field: "text",
			check: func(err error) bool {
				var e *MalformedRowError
				return errors.As(err, &e) && e.Line == 2 && e.Got == 3
			},
		},
		{
			name:  "bare quote",
			input: "gender,text\nmale,he said \"no\" twice\n",
			field: "text",
			check: func(err error) bool {
				var e *MalformedRowError
				return errors.As(err, &e) && e.Line == 2 && errors.Is(err, csv.ErrBareQuote)
			},
		},
		{
			name:  "unterminated quote in header",
			input: "gender,\"text\n",
			field: "text",
			check: func(err error) bool {
				var e *MalformedRowError
				return errors.As(err, &e) && errors.Is(err, csv.ErrQuote)
			},
		},
		{
			name:  "empty input",
			input: "",
			field: "text",
			check: func(err error) bool {
				var e *MissingColumnError
				return errors.As(err, &e)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.field, DefaultOptions())
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestReadDelimiterAndComments(t *testing.T) {
	in := "# exported survey\ntext;region\nsome words here;north\n# trailing note\nmore words;south\n"
	o := Options{Delimiter: ';', Comment: '#'}
	c, err := Read(strings.NewReader(in), "text", o)
	if err != nil {
		t.Fatal(err)
	}
	if c.NDocs() != 2 {
		t.Fatalf("NDocs() = %d", c.NDocs())
	}
	r, _ := c.Docvars().Column("region")
	if !reflect.DeepEqual(r, []string{"north", "south"}) {
		t.Errorf("region = %v", r)
	}
}

func TestReadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "survey.csv")
	if err := os.WriteFile(p, []byte(survey), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := ReadFile(p, "text", DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if c.NDocs() != 2 {
		t.Errorf("NDocs() = %d", c.NDocs())
	}

	if _, err = ReadFile(filepath.Join(t.TempDir(), "nope.csv"), "text", DefaultOptions()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("want os.ErrNotExist, got %v", err)
	}
}
