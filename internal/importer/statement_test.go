package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/importer"
	"github.com/contaflow/contaflow/internal/textnorm"
)

func TestStatementParser(t *testing.T) {
	text := `EXTRATO DE CONTA CORRENTE
Período: 01/02/2026 a 28/02/2026

SALDO ANTERIOR 1.000,00
01/02/2026 COMPRA CARTAO PADARIA REAL 45,90 D
02/02/2026 TED RECEBIDA JOAO 1.200,00 C
03/02/2026 PAGAMENTO BOLETO ENERGIA 230,00
SALDO FINAL 1.924,10
Página 1/1
`

	p := importer.NewStatementParser(textnorm.Default())
	rows, err := p.Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Explicit D marker.
	assert.Equal(t, date(2026, 2, 1), rows[0].PostedDate)
	assert.Equal(t, "COMPRA CARTAO PADARIA REAL", rows[0].Description)
	assert.True(t, rows[0].Amount.Equal(money(t, "-45.9")))

	// Explicit C marker.
	assert.True(t, rows[1].Amount.Equal(money(t, "1200")))

	// No marker: keyword heuristics decide. PAGAMENTO is a debit word.
	assert.True(t, rows[2].Amount.Equal(money(t, "-230")))
}

func TestStatementParser_PlusMinusMarkers(t *testing.T) {
	text := `05/02/2026 APLICACAO POUPANCA 500,00 -
06/02/2026 RESGATE POUPANCA 300,00 +
`

	p := importer.NewStatementParser(textnorm.Default())
	rows, err := p.Parse(strings.NewReader(text))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].Amount.Equal(money(t, "-500")))
	assert.True(t, rows[1].Amount.Equal(money(t, "300")))
}

func TestStatementParser_NoMovements(t *testing.T) {
	text := "EXTRATO\nSALDO ATUAL 10,00\nnada aqui\n"

	p := importer.NewStatementParser(textnorm.Default())
	rows, err := p.Parse(strings.NewReader(text))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOFXParser(t *testing.T) {
	ofx := `OFXHEADER:100
DATA:OFXSGML
ENCODING:USASCII

<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260130120000[-3:BRT]
<TRNAMT>-588.74
<NAME>INSTITUTO GESTAO
<MEMO>PAGAMENTO IMPOSTO
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260109
<TRNAMT>8608.52
<NAME>TFI Wise
</BANKTRANLIST>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

	p := importer.NewOFXParser(textnorm.Default())
	rows, err := p.Parse(strings.NewReader(ofx))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2026, 1, 30), rows[0].PostedDate)
	assert.True(t, rows[0].Amount.Equal(money(t, "-588.74")))
	// MEMO wins over NAME for the description.
	assert.Equal(t, "PAGAMENTO IMPOSTO", rows[0].Description)
	assert.Equal(t, "INSTITUTO GESTAO", rows[0].CounterpartyRaw)
	assert.Equal(t, "DEBIT", rows[0].TransactionKindRaw)

	assert.Equal(t, date(2026, 1, 9), rows[1].PostedDate)
	assert.True(t, rows[1].Amount.Equal(money(t, "8608.52")))
	// No MEMO: NAME is the description.
	assert.Equal(t, "TFI Wise", rows[1].Description)
}

func TestService_Parse(t *testing.T) {
	svc := importer.NewService(textnorm.Default())

	csv := "Data mov.;Descrição;Montante\n30-01-2026;CAFE;-5,00\n"
	rows, err := svc.Parse(importer.SourceCSV, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.Parse(importer.SourceManual, strings.NewReader(""))
	assert.Error(t, err)

	_, err = svc.Parse(importer.SourceType("xlsx"), strings.NewReader(""))
	assert.Error(t, err)
}
