package convenio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Nº Instrumento":             "no instrumento",
		"  Número   do Instrumento ": "numero do instrumento",
		"Situação Inst. Contratual":  "situacao inst contratual",
		"% Execução Financeira":      "execucao financeira",
		"VALOR_GLOBAL":               "valor global",
		"":                           "",
		"---":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHeader(in), "input %q", in)
	}
}

func TestNormalizeHeader_Idempotent(t *testing.T) {
	for _, spellings := range headerSpellings {
		for _, h := range spellings {
			once := NormalizeHeader(h)
			assert.Equal(t, once, NormalizeHeader(once), "header %q", h)
		}
	}
}

func TestCanonicalColumn(t *testing.T) {
	cases := []struct {
		header string
		want   string
		known  bool
	}{
		{"Nº Instrumento", FieldInstrumentID, true},
		{"N° do Instrumento", FieldInstrumentID, true},
		{"numero da proposta", FieldProposalID, true},
		{"VALOR GLOBAL", FieldGlobalValue, true},
		{"Município", "municipality", true},
		{"Fiscal de Acompanhamento", "execution_inspector", true},
		{"Fiscal", FieldInspectorResp, true},
		{"instrument_id", FieldInstrumentID, true},
		{"Coluna Nova ", "Coluna Nova", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := CanonicalColumn(c.header)
		assert.Equal(t, c.want, got, "header %q", c.header)
		assert.Equal(t, c.known, ok, "header %q", c.header)
	}
}

func TestHeaderTable_CoversRegistry(t *testing.T) {
	for _, f := range Fields {
		got, ok := CanonicalColumn(f.Name)
		assert.True(t, ok, "field %s", f.Name)
		assert.Equal(t, f.Name, got)
	}
}
