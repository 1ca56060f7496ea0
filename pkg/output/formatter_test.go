package output

import (
	"strings"
	"testing"
)

type row struct {
	Name  string
	Value string
}

func TestTableFormatterRendersHeaderAndRows(t *testing.T) {
	f := NewFormatter("table")
	out := f.Format([]row{{Name: "aircraft/0/alt", Value: "1000"}})
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "aircraft/0/alt") {
		t.Errorf("output = %q, missing header or row", out)
	}
}

func TestTableFormatterEmptySlice(t *testing.T) {
	f := NewFormatter("table")
	out := f.Format([]row{})
	if !strings.Contains(out, "No entries found") {
		t.Errorf("output = %q, want a no-entries message", out)
	}
}

func TestJSONFormatterIndentsFields(t *testing.T) {
	f := NewFormatter("json")
	out := f.Format(row{Name: "x", Value: "1"})
	if !strings.Contains(out, `"Name": "x"`) {
		t.Errorf("output = %q, want a Name field", out)
	}
}

func TestYAMLFormatterRendersFields(t *testing.T) {
	f := NewFormatter("yaml")
	out := f.Format(row{Name: "x", Value: "1"})
	if !strings.Contains(out, "name: x") {
		t.Errorf("output = %q, want a name field", out)
	}
}

func TestNewFormatterDefaultsToTable(t *testing.T) {
	if _, ok := NewFormatter("").(*TableFormatter); !ok {
		t.Error("NewFormatter(\"\") should default to *TableFormatter")
	}
}
