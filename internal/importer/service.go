package importer

import (
	"fmt"
	"io"

	"github.com/contaflow/contaflow/internal/canonical"
	"github.com/contaflow/contaflow/internal/textnorm"
)

type Service struct {
	csvParser       Parser
	ofxParser       Parser
	statementParser Parser
}

func NewService(norm *textnorm.Normalizer) *Service {
	return &Service{
		csvParser:       NewCSVParser(norm),
		ofxParser:       NewOFXParser(norm),
		statementParser: NewStatementParser(norm),
	}
}

// Parse reads a source file into canonical rows. Manual rows never pass
// through here: they arrive pre-canonicalized from the entry endpoint.
func (s *Service) Parse(source SourceType, r io.Reader) ([]canonical.Row, error) {
	var parser Parser

	switch source {
	case SourceCSV:
		parser = s.csvParser
	case SourceOFX:
		parser = s.ofxParser
	case SourcePDF:
		parser = s.statementParser
	default:
		return nil, fmt.Errorf("unknown source type: %s", source)
	}

	return parser.Parse(r)
}
