package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/coinquest/internal/importer"
	"github.com/MrJamesThe3rd/coinquest/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestCGDParser_Account(t *testing.T) {
	csv := `Consultar saldos e movimentos à ordem - 31-01-2026;"=""0000"""
Nome cliente;JOHN DOE

Dados da conta
Saldo contabilístico;1.000,00 EUR

Data mov.;Data-valor;Descrição;Montante;Saldo contabilístico após movimento
30-01-2026;30-01-2026;INSTITUTO GESTAO FINA;-588,74;48.825,46
09-01-2026;09-01-2026;TFI Wise;8.608,52;52.532,78
`

	rows, err := importer.CGDParser{}.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2026, 1, 30), rows[0].Date)
	assert.Equal(t, "INSTITUTO GESTAO FINA", rows[0].Merchant)
	assert.Equal(t, "INSTITUTO GESTAO FINA", rows[0].Note)
	assert.Equal(t, "588.74", rows[0].Amount.String())
	assert.Equal(t, transaction.TypeExpense, rows[0].Type)
	assert.Empty(t, rows[0].Category)

	assert.Equal(t, "8608.52", rows[1].Amount.String())
	assert.Equal(t, transaction.TypeIncome, rows[1].Type)
}

func TestCGDParser_Statement(t *testing.T) {
	csv := `Consultar extrato - 15-02-2026
Intervalo de ;01-02-2026 a 14-02-2026

Data mov. ;Data valor ;Origem ;Descrição ;Movimento ;Estorno ;Saldo contabilístico após movimento ;
13-02-2026;13-02-2026;"=""0003""";PAGAMENTO TSU ;-608,13;  ;41.393,66;
04-02-2026;04-02-2026;SIBS ;TFI Wise ;4.324,06;  ;51.302,85;
`

	rows, err := importer.CGDParser{}.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2026, 2, 13), rows[0].Date)
	assert.Equal(t, "PAGAMENTO TSU", rows[0].Merchant)
	assert.Equal(t, "608.13", rows[0].Amount.String())
	assert.Equal(t, "4324.06", rows[1].Amount.String())
	assert.Equal(t, transaction.TypeIncome, rows[1].Type)
}

func TestCGDParser_Card(t *testing.T) {
	csv := `Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;UBER   *TRIP ;47,91 ; ;
17-12-2025 ;14-12-2025 ;REFUND AMAZON ;  ;25,00 ;
 ; ; ; ;Página 1/2 ;
`

	rows, err := importer.CGDParser{}.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "47.91", rows[0].Amount.String())
	assert.Equal(t, transaction.TypeExpense, rows[0].Type)
	assert.Equal(t, "25", rows[1].Amount.String())
	assert.Equal(t, transaction.TypeIncome, rows[1].Type)
}

func TestCGDParser_LargeAmountsAndFooters(t *testing.T) {
	csv := `Data mov.;Descrição;Montante
30-01-2026;BIG TRANSFER;-1.234.567,89
Totais;;;;
`

	rows, err := importer.CGDParser{}.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "1234567.89", rows[0].Amount.String())
}

func TestCGDParser_Errors(t *testing.T) {
	_, err := importer.CGDParser{}.Parse(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching CGD format")

	_, err = importer.CGDParser{}.Parse(strings.NewReader("Data mov.;Descrição;Montante\n30-01-2026;;-10,00\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestCGDParser_HeaderOnly(t *testing.T) {
	rows, err := importer.CGDParser{}.Parse(strings.NewReader("Data mov.;Data-valor;Descrição;Montante"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
