package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrdinalChoice(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"first", 0, true},
		{"1st", 0, true},
		{"1", 0, true},
		{"one", 0, true},
		{"SECOND", 1, true},
		{"2nd", 1, true},
		{"2", 1, true},
		{"Third, please.", 2, true},
		{"3rd option", 2, true},
		{"the second one", 1, true},
		{"option 2", 1, true},
		{"fourth", 0, false},
		{"4", 0, false},
		{"first or second", 0, false},
		{"banana", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseOrdinalChoice(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, "input %q", tt.in)
		}
	}
}

func TestParseOrdinalChoice_OutsideChoices(t *testing.T) {
	for _, in := range []string{
		"fourth", "4", "4th", "0", "zero", "last", "second third",
		"1 2", "two or three", "the fourth one", "first street", "none of them",
	} {
		_, ok := ParseOrdinalChoice(in)
		assert.False(t, ok, "input %q", in)
	}
}
