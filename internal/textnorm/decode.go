package textnorm

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Candidate encodings evaluated by Decode, in tie-break order.
const (
	EncodingUTF8    = "UTF-8"
	EncodingWin1252 = "windows-1252"
	EncodingLatin1  = "ISO-8859-1"
)

// Decode interprets raw bytes of unknown encoding as text. The same buffer
// is decoded under UTF-8, Windows-1252 and Latin-1; each candidate is scored
// by counting replacement characters, mojibake artifact sequences and stray
// control characters, and the cleanest candidate wins. Ties resolve to UTF-8
// first, then to whichever of the single-byte encodings chardet prefers.
func (n *Normalizer) Decode(b []byte) (text, encodingUsed string) {
	if len(b) == 0 {
		return "", EncodingUTF8
	}

	b = stripBOM(b)

	candidates := []struct {
		name string
		text string
	}{
		{EncodingUTF8, decodeUTF8(b)},
		{EncodingWin1252, decodeCharmap(b, charmap.Windows1252)},
		{EncodingLatin1, decodeCharmap(b, charmap.ISO8859_1)},
	}

	best := 0
	bestScore := n.decodeScore(candidates[0].text)

	for i := 1; i < len(candidates); i++ {
		score := n.decodeScore(candidates[i].text)
		if score < bestScore {
			best = i
			bestScore = score
		}
	}

	// Win-1252 and Latin-1 produce identical text for most buffers; let
	// chardet pick between them when they tie and UTF-8 lost.
	if best == 1 && n.decodeScore(candidates[2].text) == bestScore {
		if hint := detectCharset(b); hint == EncodingLatin1 {
			best = 2
		}
	}

	return candidates[best].text, candidates[best].name
}

// decodeScore rates decoded text; lower is cleaner.
func (n *Normalizer) decodeScore(s string) int {
	score := 0

	for _, r := range s {
		switch {
		case r == utf8.RuneError:
			score += 3
		case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
			score++
		}
	}

	for _, seq := range n.artifacts {
		score += strings.Count(s, seq) * 2
	}

	return score
}

// decodeUTF8 converts bytes to a string, replacing invalid sequences with
// U+FFFD instead of carrying raw bytes through.
func decodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	var sb strings.Builder
	sb.Grow(len(b))

	for _, r := range string(b) {
		sb.WriteRune(r)
	}

	return sb.String()
}

func decodeCharmap(b []byte, cm *charmap.Charmap) string {
	out, _, err := transform.Bytes(cm.NewDecoder(), b)
	if err != nil {
		return string(b)
	}

	return string(out)
}

func detectCharset(b []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil {
		return ""
	}

	return result.Charset
}

func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, bomUTF8) {
		return b[len(bomUTF8):]
	}

	return b
}

// NewUTF8Reader detects the encoding of the input and returns a reader that
// decodes the content to UTF-8. Used by the CSV importer so parsing always
// sees clean text.
//
// Detection order:
//  1. Check for BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. Score the peeked bytes via Decode and wrap accordingly
func (n *Normalizer) NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if bytes.HasPrefix(buf, bomUTF8) {
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	}

	if bytes.HasPrefix(buf, bomUTF16LE) {
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, decoder), nil
	}

	if bytes.HasPrefix(buf, bomUTF16BE) {
		decoder := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(br, decoder), nil
	}

	_, enc := n.Decode(buf)
	switch enc {
	case EncodingWin1252:
		return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
	case EncodingLatin1:
		return transform.NewReader(br, charmap.ISO8859_1.NewDecoder()), nil
	}

	return br, nil
}
