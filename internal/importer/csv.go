package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/contaflow/contaflow/internal/canonical"
	"github.com/contaflow/contaflow/internal/textnorm"
)

// CSVParser reads bank CSV exports and produces canonical rows. It
// auto-detects which export format is being used by matching column headers
// against known profiles, tolerating preamble rows before the header and
// footer rows after the data.
type CSVParser struct {
	norm *textnorm.Normalizer
}

func NewCSVParser(norm *textnorm.Normalizer) *CSVParser {
	return &CSVParser{norm: norm}
}

func (p *CSVParser) Parse(r io.Reader) ([]canonical.Row, error) {
	utf8r, err := p.norm.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	text := p.norm.RepairMojibake(string(raw))

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = detectDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(p.norm, records)
	if profile == nil {
		return nil, fmt.Errorf("no matching export format found in headers")
	}

	return p.parseRows(profile, cols, records[headerIdx+1:]), nil
}

// detectDelimiter picks ';' or ',' by which occurs more often in the first
// non-empty line. European exports favor ';' since ',' is the decimal mark.
func detectDelimiter(text string) rune {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.Count(line, ";") >= strings.Count(line, ",") {
			return ';'
		}

		return ','
	}

	return ';'
}

// colIndex maps matching-key column names to their index in the row.
type colIndex map[string]int

// detectProfile scans records for a header row that matches a known profile.
func detectProfile(norm *textnorm.Normalizer, records [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range records {
		cols := make(colIndex)

		for i, cell := range row {
			name := norm.MatchKey(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts canonical rows from data records. Unparseable dates and
// amounts mark footer or filler rows and are skipped, not errors.
func (p *CSVParser) parseRows(profile *Profile, cols colIndex, records [][]string) []canonical.Row {
	var rows []canonical.Row

	for _, record := range records {
		dateStr := cellValue(record, cols[profile.DateCol])
		if dateStr == "" {
			continue
		}

		date, err := canonical.ParseDate(dateStr)
		if err != nil {
			continue
		}

		desc := cellValue(record, cols[profile.DescCol])
		if desc == "" || canonical.IsBalanceLine(desc) {
			continue
		}

		amount, ok := parseAmountCells(profile, cols, record)
		if !ok {
			continue
		}

		row := canonical.Row{
			PostedDate:  date,
			Amount:      amount,
			Description: desc,
		}

		// Optional columns may be missing from the file even when the
		// profile matched on the required ones.
		if profile.KindCol != "" {
			if idx, ok := cols[profile.KindCol]; ok {
				row.TransactionKindRaw = cellValue(record, idx)
			}
		}

		if profile.CounterpartyCol != "" {
			if idx, ok := cols[profile.CounterpartyCol]; ok {
				row.CounterpartyRaw = cellValue(record, idx)
			}
		}

		if row.Validate() != nil {
			continue
		}

		rows = append(rows, row)
	}

	return rows
}

// parseAmountCells resolves the signed amount per the profile's amount mode.
func parseAmountCells(p *Profile, cols colIndex, record []string) (decimal.Decimal, bool) {
	switch p.AmountMode {
	case amountSplit:
		if s := cellValue(record, cols[p.DebitCol]); s != "" {
			if d, err := canonical.ParseMoney(s); err == nil && !d.IsZero() {
				return d.Abs().Neg(), true
			}
		}

		if s := cellValue(record, cols[p.CreditCol]); s != "" {
			if d, err := canonical.ParseMoney(s); err == nil && !d.IsZero() {
				return d.Abs(), true
			}
		}

	case amountSingle:
		s := cellValue(record, cols[p.AmountCol])
		if s == "" {
			break
		}

		d, err := canonical.ParseMoney(s)
		if err != nil || d.IsZero() {
			break
		}

		return d, true
	}

	return decimal.Zero, false
}

func cellValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}
