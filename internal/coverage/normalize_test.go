package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \t\n ", want: ""},
		{name: "trim and lower", in: "  Projected Stock ", want: "projected stock"},
		{name: "collapse whitespace", in: "Days   of\t\tCoverage", want: "days of coverage"},
		{name: "turkish dotless i", in: "Kısıtsız Consensus", want: "kisitsiz consensus"},
		{name: "turkish cedilla and breve", in: "Başlangıç Stok", want: "baslangic stok"},
		{name: "dotted capital i", in: "İSTANBUL", want: "istanbul"},
		{name: "umlaut", in: "Malzeme Tüketim Mik.", want: "malzeme tuketim mik."},
		{name: "non breaking space", in: "beginning\u00a0stock", want: "beginning stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	inputs := []string{
		"Kısıtsız Consensus Sell-in Forecast / Malzeme Tüketim Mik.",
		"  UNCONSTRAINED   Projected Stock ",
		"İğdır Şube",
		"Ünconstrainded projected stock",
		"",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once), "input %q", in)
	}
}
