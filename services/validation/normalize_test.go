package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"'in-home service'", "in-home service"},
		{`"local"`, "local"},
		{`  "'Long Distance'"  `, "Long Distance"},
		{"it's mine", "it's mine"},
		{"“quoted”", "quoted"},
		{`'unbalanced"`, `'unbalanced"`},
		{"''", ""},
		{"   ", ""},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeString(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeString_Idempotent(t *testing.T) {
	inputs := []string{
		"'in-home service'", `"'nested'"`, "it's mine", ` ' spaced ' `, `"a"b"`, "", "x",
	}
	for _, in := range inputs {
		once := NormalizeString(in)
		assert.Equal(t, once, NormalizeString(once), "input %q", in)
	}
}
