package util

import (
	"strings"
	"testing"
)

func TestPersonName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Eleanor Vance", "VANCE^ELEANOR"},
		{"Hugh Crain", "CRAIN^HUGH"},
		{"Theodora C.", "C.^THEODORA"},
		{"Mary Anne O'Neil-Smith", "O'NEIL-SMITH^MARY ANNE"},
		{"Cher", "CHER"},
		{"Analyzed Case #42", "ANALYZED CASE #42"},
		{"  spaced   out  ", "OUT^SPACED"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := PersonName(tc.input); got != tc.want {
			t.Errorf("PersonName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestPersonName_Clipped(t *testing.T) {
	long := strings.Repeat("Bartholomew ", 10) + "Smith"
	if got := PersonName(long); len(got) > 64 {
		t.Errorf("PersonName produced %d chars, max 64", len(got))
	}
}
