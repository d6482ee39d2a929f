package convenio

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader reduces free-form header text to a lookup key: NFKD
// decomposition, combining marks dropped, lower case, runs of
// non-alphanumeric characters collapsed to one space, trimmed.
func NormalizeHeader(s string) string {
	s = norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(s))
	gap := false
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		r = unicode.ToLower(r)
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteByte(' ')
		}
		gap = false
		b.WriteRune(r)
	}
	return b.String()
}

// headerSpellings lists known header spellings per canonical field, grouped
// by the kind of export they come from.
var headerSpellings = map[string][]string{
	// Painel: instrumentos
	FieldInstrumentID: {
		"Nº do Instrumento", "Nº Instrumento", "No Instrumento", "N° Instrumento", "N° do Instrumento",
		"Número do Instrumento", "Numero do Instrumento", "Nr Instrumento", "Nr. Instrumento",
		"Instrumento", "Nº Convênio", "Número do Convênio", "Convênio",
	},
	FieldYear:               {"Ano", "Ano Assinatura", "Ano da Assinatura"},
	FieldObject:             {"Objeto", "Objeto do Instrumento"},
	FieldUF:                 {"UF", "UF Convenente", "Estado"},
	"municipality":          {"Município", "Municipio", "Município Convenente"},
	"parliamentarian":       {"Parlamentar", "Nome Parlamentar", "Autor da Emenda"},
	FieldGlobalValue:        {"Valor Global", "Valor Global do Instrumento", "Vl Global", "Vl. Global"},
	FieldProcessNumber:      {"Nº do Processo", "Nº Processo", "NUP", "Processo", "Número do Processo"},
	"instrument_status":     {"Situação do Instrumento", "Situação Instrumento", "Situacao Instrumento"},
	"sub_situation":         {"Subsituação", "Subsituação do Instrumento", "Sub Situação"},
	"contractual_situation": {"Situação Inst. Contratual", "Situacao Inst. Contratual", "Situação Inst Contratual", "Situacao Inst Contratual", "Situação Contratual"},

	// Painel: propostas
	FieldProposalID: {
		"Nº da Proposta", "Nº Proposta", "No Proposta", "N° Proposta", "Número da Proposta",
		"Numero da Proposta", "Nr Proposta", "Proposta",
	},
	FieldProponent: {"Proponente", "Nome Proponente", "Nome do Proponente", "Convenente"},
	FieldTaxID:     {"CNPJ", "CNPJ Proponente", "CNPJ do Proponente", "CNPJ Convenente"},

	// Execução financeira
	"transfer_value":      {"Valor Repasse", "Valor de Repasse", "Vl Repasse"},
	"counterpart_value":   {"Valor Contrapartida", "Valor de Contrapartida", "Vl Contrapartida"},
	"committed_value":     {"Valor Empenhado", "Valor Empenhado Acumulado", "Empenhado Acumulado"},
	"disbursed_value":     {"Valor Desembolsado", "Valor Desembolsado Acumulado", "Desembolsado Acumulado"},
	"account_balance":     {"Saldo em Conta", "Saldo Conta", "Saldo da Conta"},
	"financial_execution": {"% Execução Financeira", "Percentual Execução Financeira", "Execução Financeira"},

	// Desembolsos e pagamentos
	FieldDisbursement: {
		"Faixa sem Desembolso", "Tempo sem Desembolso", "Dias sem Execução", "Faixa Dias sem Execução",
		"Prazo sem Execução",
	},
	FieldLastPayment: {
		"Faixa Último Pagamento", "Tempo desde Último Pagamento", "Dias Último Pagamento",
		"Faixa Dias Último Pagamento",
	},
	FieldNoPayment150: {
		"Sem Pagamento há 150 dias", "Sem Pagamento 150 Dias", "Sem pagamento há mais de 150 dias",
	},

	// Coordenações
	"basic_project_situation":         {"Situação do Projeto Básico"},
	"basic_project_analyst":           {"Analista do Projeto Básico"},
	"basic_project_analysis_status":   {"Status da Análise do Projeto Básico"},
	"execution_inspector":             {"Fiscal de Acompanhamento"},
	"execution_status":                {"Status da Execução", "Situação da Execução"},
	"convenente_action_status":        {"Status Ação Convenente"},
	"works_status":                    {"Status da Obra"},
	"accountability_inspector":        {"Fiscal de Acompanhamento prestação de contas"},
	"accountability_execution_status": {"Status de Execução prestação de contas"},
	"accountability_works_status":     {"Status da obra prestação de contas"},
	"accountability_status":           {"Status prestação de contas"},
	"audit_status":                    {"Status da Fiscalização", "Situação da Fiscalização", "Status Vistoria"},

	// Atribuições internas
	FieldEngResp:       {"Engenheiro Responsável", "Eng. Responsável", "Engenheiro"},
	FieldTecResp:       {"Técnico Responsável", "Tec. Responsável", "Técnico"},
	FieldInspectorResp: {"Fiscal Responsável", "Fiscal"},
}

var headerIndex = func() map[string]string {
	m := make(map[string]string)
	for field, spellings := range headerSpellings {
		if _, ok := fieldByName[field]; !ok {
			panic(fmt.Sprintf("convenio: header table names unknown field %q", field))
		}
		m[NormalizeHeader(field)] = field
		for _, s := range spellings {
			key := NormalizeHeader(s)
			if prev, ok := m[key]; ok && prev != field {
				panic(fmt.Sprintf("convenio: header %q maps to both %q and %q", s, prev, field))
			}
			m[key] = field
		}
	}
	return m
}()

// CanonicalColumn maps a raw header onto its canonical field name. Unknown
// headers come back trimmed with ok false.
func CanonicalColumn(header string) (name string, ok bool) {
	key := NormalizeHeader(header)
	if key == "" {
		return "", false
	}
	if field, found := headerIndex[key]; found {
		return field, true
	}
	return strings.TrimSpace(header), false
}
