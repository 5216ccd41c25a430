package importer

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/contaflow/contaflow/internal/canonical"
	"github.com/contaflow/contaflow/internal/textnorm"
)

// StatementParser reads text extracted from scanned statements, one movement
// per line. Lines that do not look like movements (headers, balance
// summaries, page furniture) are skipped.
type StatementParser struct {
	norm *textnorm.Normalizer
}

func NewStatementParser(norm *textnorm.Normalizer) *StatementParser {
	return &StatementParser{norm: norm}
}

// movementLine captures "date description amount [marker]". The marker, when
// present, is an explicit sign: C/+ credit, D/- debit.
var movementLine = regexp.MustCompile(
	`^(\d{2}[-/]\d{2}[-/]\d{2,4})\s+(.+?)\s+([-+]?[\d.,]+\d)\s*([CD+-])?$`,
)

func (p *StatementParser) Parse(r io.Reader) ([]canonical.Row, error) {
	utf8r, err := p.norm.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	var rows []canonical.Row

	scanner := bufio.NewScanner(utf8r)
	for scanner.Scan() {
		line := strings.TrimSpace(p.norm.RepairMojibake(scanner.Text()))
		if line == "" || canonical.IsBalanceLine(line) {
			continue
		}

		m := movementLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		date, err := canonical.ParseDate(m[1])
		if err != nil {
			continue
		}

		amount, err := canonical.ParseMoney(m[3])
		if err != nil {
			continue
		}

		desc := strings.TrimSpace(m[2])

		switch m[4] {
		case "D", "-":
			amount = amount.Abs().Neg()
		case "C", "+":
			amount = amount.Abs()
		default:
			// No explicit marker: fall back to keyword heuristics on the
			// whole line.
			amount = canonical.ApplySign(amount, canonical.ResolveSign(p.norm.MatchKey(line)))
		}

		row := canonical.Row{
			PostedDate:  date,
			Amount:      amount,
			Description: desc,
		}

		if row.Validate() != nil {
			continue
		}

		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan statement: %w", err)
	}

	return rows, nil
}
