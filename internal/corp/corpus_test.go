//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package corp

import (
	"errors"
	"reflect"
	"testing"
)

func testvars(t *testing.T) *Docvars {
	t.Helper()
	dv, err := NewDocvars([]string{"gender", "urban"}, [][]string{
		{"male", "yes"},
		{"female", "no"},
		{"female", "yes"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return dv
}

func TestNewAlignment(t *testing.T) {
	dv := testvars(t)
	tests := []struct {
		name  string
		texts []string
		want  bool
	}{
		{"aligned", []string{"a", "b", "c"}, false},
		{"short", []string{"a", "b"}, true},
		{"long", []string{"a", "b", "c", "d"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(DefaultNames(len(tt.texts)), tt.texts, dv)
			var cae *CovariateAlignmentError
			if got := errors.As(err, &cae); got != tt.want {
				t.Fatalf("CovariateAlignmentError = %v, want %v (err %v)", got, tt.want, err)
			}
			if tt.want && (cae.Docs != len(tt.texts) || cae.Rows != 3) {
				t.Errorf("got Docs=%d Rows=%d", cae.Docs, cae.Rows)
			}
		})
	}
}

func TestNilDocvars(t *testing.T) {
	c, err := New([]string{"x", "y"}, []string{"one", "two"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Docvars().NRows() != 2 || len(c.Docvars().Fields()) != 0 {
		t.Errorf("unexpected docvars %+v", c.Docvars())
	}
}

func TestDocvarsLookups(t *testing.T) {
	dv := testvars(t)

	lv, err := dv.Levels("gender")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(lv, []string{"female", "male"}) {
		t.Errorf("Levels() = %v", lv)
	}

	eq, err := dv.Equals("urban", "yes")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(eq, []bool{true, false, true}) {
		t.Errorf("Equals() = %v", eq)
	}

	v, err := dv.Get("gender", 1)
	if err != nil || v != "female" {
		t.Errorf("Get() = %q, %v", v, err)
	}

	_, err = dv.Column("age")
	var ufe *UnknownFieldError
	if !errors.As(err, &ufe) || ufe.Field != "age" {
		t.Errorf("want UnknownFieldError for 'age', got %v", err)
	}
}

func TestSubsetKeepsAlignment(t *testing.T) {
	c, err := New(DefaultNames(3), []string{"a", "b", "c"}, testvars(t))
	if err != nil {
		t.Fatal(err)
	}
	s, err := c.Subset([]int{2, 0})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(s.Names(), []string{"text3", "text1"}) {
		t.Errorf("Names() = %v", s.Names())
	}
	g, _ := s.Docvars().Column("gender")
	if !reflect.DeepEqual(g, []string{"female", "male"}) {
		t.Errorf("gender = %v", g)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	c, _ := New([]string{"a"}, []string{"hello"}, nil)
	nn := c.Names()
	nn[0] = "changed"
	if c.Name(0) != "a" {
		t.Error("Names() leaked internal state")
	}
}

func TestSummary(t *testing.T) {
	c, _ := New([]string{"a"}, []string{"The cat saw the dog."}, nil)
	s := c.Summary()
	if s[0].Tokens != 5 || s[0].Types != 4 {
		t.Errorf("Summary() = %+v", s[0])
	}
}
