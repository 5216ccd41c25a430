package importer

// amountMode determines how amounts are extracted from a CSV row.
type amountMode int

const (
	// amountSingle means one signed column (e.g. "Valor" with "-10,00").
	amountSingle amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// Profile describes the column layout of a bank CSV export. Column names are
// stored in matching-key form (uppercase, accent-stripped) so headers match
// regardless of the source file's encoding troubles. Adding a new bank format
// is just adding a Profile to the list.
type Profile struct {
	Name            string
	DateCol         string
	DescCol         string
	AmountMode      amountMode
	AmountCol       string // used when AmountMode == amountSingle
	DebitCol        string // used when AmountMode == amountSplit
	CreditCol       string // used when AmountMode == amountSplit
	KindCol         string // optional transaction-kind column
	CounterpartyCol string // optional counterparty column
}

// requiredCols returns the columns that must be present for this profile to
// match a header row.
func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles is the ordered list of known export formats. More specific
// profiles come first to avoid false matches.
var profiles = []Profile{
	{
		Name:       "cartao",
		DateCol:    "DATA",
		DescCol:    "DESCRICAO",
		AmountMode: amountSplit,
		DebitCol:   "DEBITO",
		CreditCol:  "CREDITO",
	},
	{
		Name:            "extrato-detalhado",
		DateCol:         "DATA",
		DescCol:         "HISTORICO",
		AmountMode:      amountSingle,
		AmountCol:       "VALOR",
		KindCol:         "TIPO",
		CounterpartyCol: "FAVORECIDO",
	},
	{
		Name:       "extrato",
		DateCol:    "DATA MOV.",
		DescCol:    "DESCRICAO",
		AmountMode: amountSingle,
		AmountCol:  "MOVIMENTO",
	},
	{
		Name:       "conta",
		DateCol:    "DATA",
		DescCol:    "LANCAMENTO",
		AmountMode: amountSingle,
		AmountCol:  "VALOR",
	},
	{
		Name:       "conta-montante",
		DateCol:    "DATA MOV.",
		DescCol:    "DESCRICAO",
		AmountMode: amountSingle,
		AmountCol:  "MONTANTE",
	},
}
