package importer

import (
	"io"

	"github.com/contaflow/contaflow/internal/canonical"
)

// SourceType identifies the kind of file a batch of rows came from.
type SourceType string

const (
	SourceCSV    SourceType = "csv"
	SourceOFX    SourceType = "ofx"
	SourcePDF    SourceType = "pdf"
	SourceManual SourceType = "manual"
)

type Parser interface {
	Parse(r io.Reader) ([]canonical.Row, error)
}
