package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/contaflow/contaflow/internal/canonical"
	"github.com/contaflow/contaflow/internal/textnorm"
)

// OFXParser reads OFX/SGML bank exports. Only the transaction list is
// consumed; header key/value noise and unclosed SGML tags are tolerated, as
// real bank files rarely emit valid XML.
type OFXParser struct {
	norm *textnorm.Normalizer
}

func NewOFXParser(norm *textnorm.Normalizer) *OFXParser {
	return &OFXParser{norm: norm}
}

var (
	stmtTrnOpen  = regexp.MustCompile(`(?i)<STMTTRN>`)
	stmtTrnClose = regexp.MustCompile(`(?i)</STMTTRN>`)
	ofxTag       = regexp.MustCompile(`(?i)<([A-Z0-9]+)>([^<\r\n]*)`)
)

func (p *OFXParser) Parse(r io.Reader) ([]canonical.Row, error) {
	utf8r, err := p.norm.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	raw, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	text := p.norm.RepairMojibake(string(raw))

	var rows []canonical.Row

	// Blocks are delimited by the opening tag alone: real SGML exports
	// usually omit </STMTTRN>.
	blocks := stmtTrnOpen.Split(text, -1)
	if len(blocks) > 0 {
		blocks = blocks[1:]
	}

	for _, block := range blocks {
		if loc := stmtTrnClose.FindStringIndex(block); loc != nil {
			block = block[:loc[0]]
		}

		fields := make(map[string]string)

		for _, tag := range ofxTag.FindAllStringSubmatch(block, -1) {
			fields[strings.ToUpper(tag[1])] = strings.TrimSpace(tag[2])
		}

		row, ok := p.rowFromFields(fields)
		if !ok {
			continue
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func (p *OFXParser) rowFromFields(fields map[string]string) (canonical.Row, bool) {
	date, ok := parseOFXDate(fields["DTPOSTED"])
	if !ok {
		return canonical.Row{}, false
	}

	amount, err := canonical.ParseMoney(fields["TRNAMT"])
	if err != nil {
		return canonical.Row{}, false
	}

	desc := fields["MEMO"]
	if desc == "" {
		desc = fields["NAME"]
	}

	row := canonical.Row{
		PostedDate:         date,
		Amount:             amount,
		Description:        desc,
		CounterpartyRaw:    fields["NAME"],
		TransactionKindRaw: fields["TRNTYPE"],
	}

	if row.Validate() != nil {
		return canonical.Row{}, false
	}

	return row, true
}

// parseOFXDate reads the YYYYMMDD prefix of an OFX datetime, ignoring the
// time and timezone tail.
func parseOFXDate(s string) (time.Time, bool) {
	if len(s) < 8 {
		return time.Time{}, false
	}

	t, err := time.Parse("20060102", s[:8])
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}
