// Package textnorm turns noisy source text into clean, canonical matching
// keys. It owns encoding detection, mojibake repair and the normalization
// applied to descriptions and merchant names before fingerprinting.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tables is the static configuration behind a Normalizer. All slices are
// treated as immutable after construction so tests can inject alternates.
type Tables struct {
	Repairs       []repair
	WordRepairs   []repair
	Artifacts     []string
	NoisePrefixes []string
	StopWords     []string
}

type Normalizer struct {
	repairs       []repair
	wordRepairs   []repair
	artifacts     []string
	noisePrefixes []string
	stopWords     map[string]struct{}
}

// defaultArtifacts are sequences that only appear when UTF-8 text was decoded
// as a single-byte encoding; their presence penalizes a decode candidate.
var defaultArtifacts = []string{
	"Ã§", "Ã£", "Ã¡", "Ã©", "Ãª", "Ã­", "Ã³", "Ã´", "Ãµ", "Ãº",
	"Ã‡", "Ã‰", "â€œ", "â€“", "â€”", "â€™", "Â ",
}

// defaultNoisePrefixes are boilerplate lead-ins that some statement formats
// prepend to the actual counterparty text.
var defaultNoisePrefixes = []string{
	"NO ESTABELECIMENTO:",
	"ESTABELECIMENTO:",
	"NO ESTAB:",
	"LOCAL:",
}

// defaultStopWords are payment-method and transfer-protocol jargon plus
// country/city noise that carries no merchant identity.
var defaultStopWords = []string{
	"PIX", "TED", "DOC", "TEF", "QR", "DEB", "CRED", "DEBITO", "CREDITO",
	"COMPRA", "PAGAMENTO", "PGTO", "PAGTO", "TRANSF", "TRANSFERENCIA",
	"ENVIADA", "RECEBIDA", "CARTAO", "PARC", "PARCELA", "VISTA",
	"BR", "BRA", "BRASIL", "SAO", "PAULO", "RIO", "JANEIRO",
	"LTDA", "EIRELI", "MEI",
}

func New(t Tables) *Normalizer {
	stop := make(map[string]struct{}, len(t.StopWords))
	for _, w := range t.StopWords {
		stop[strings.ToUpper(w)] = struct{}{}
	}

	return &Normalizer{
		repairs:       t.Repairs,
		wordRepairs:   t.WordRepairs,
		artifacts:     t.Artifacts,
		noisePrefixes: t.NoisePrefixes,
		stopWords:     stop,
	}
}

// Default builds a Normalizer with the built-in tables.
func Default() *Normalizer {
	return New(Tables{
		Repairs:       defaultRepairs,
		WordRepairs:   defaultWordRepairs,
		Artifacts:     defaultArtifacts,
		NoisePrefixes: defaultNoisePrefixes,
		StopWords:     defaultStopWords,
	})
}

// Options controls Normalize. The zero value only collapses whitespace.
type Options struct {
	Uppercase    bool
	StripAccents bool
	RemoveNoise  bool
}

// Normalize collapses whitespace and control separators and optionally strips
// noise prefixes, folds accents and uppercases.
func (n *Normalizer) Normalize(s string, opts Options) string {
	s = collapseSpace(s)

	if opts.RemoveNoise {
		s = n.removeNoise(s)
	}

	if opts.StripAccents {
		s = stripAccents(s)
	}

	if opts.Uppercase {
		s = strings.ToUpper(s)
	}

	return strings.TrimSpace(s)
}

// MatchKey is the normalization variant used for fingerprints and matching:
// always uppercase, accent-stripped and noise-removed.
func (n *Normalizer) MatchKey(s string) string {
	return n.Normalize(s, Options{Uppercase: true, StripAccents: true, RemoveNoise: true})
}

func (n *Normalizer) removeNoise(s string) string {
	upper := strings.ToUpper(s)

	for _, prefix := range n.noisePrefixes {
		if strings.HasPrefix(upper, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			upper = strings.ToUpper(s)
		}
	}

	return s
}

// collapseSpace folds runs of whitespace and control separators into one
// space.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	space := false

	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			space = true
			continue
		}

		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		space = false

		sb.WriteRune(r)
	}

	return sb.String()
}

// stripAccents folds accented letters to their base form via canonical
// decomposition.
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}
