package textnorm

import "strings"

// repair is a garbled-sequence to correct-character substitution. Repairs are
// applied in order, so longer sequences must come before their prefixes.
type repair struct {
	from string
	to   string
}

// defaultRepairs covers UTF-8 text that was decoded once as Latin-1/Win-1252:
// accented Portuguese letters, smart quotes and dashes.
var defaultRepairs = []repair{
	// Uppercase accented letters first: their second byte collides with the
	// lowercase table below.
	{"Ã‡", "Ç"}, {"Ã‰", "É"}, {"Ãš", "Ú"}, {"Ã“", "Ó"}, {"Ã‚", "Â"},
	{"ÃŠ", "Ê"}, {"Ã•", "Õ"}, {"Ã", "Á"}, {"Ã", "Í"}, {"Ã", "Ã"},

	{"Ã§", "ç"}, {"Ã£", "ã"}, {"Ãµ", "õ"}, {"Ã¡", "á"}, {"Ã¢", "â"},
	{"Ã©", "é"}, {"Ãª", "ê"}, {"Ã­", "í"}, {"Ã³", "ó"}, {"Ã´", "ô"},
	{"Ãº", "ú"}, {"Ã¼", "ü"}, {"Ã ", "à"},

	{"â€œ", "“"}, {"â€", "”"}, {"â€˜", "‘"}, {"â€™", "’"},
	{"â€“", "–"}, {"â€”", "—"}, {"â€¦", "…"},
	{"Â ", " "}, {"Â", ""},
}

// defaultWordRepairs fixes header tokens whose accents were already lost to
// replacement characters, where the surrounding letters identify the word.
var defaultWordRepairs = []repair{
	{"Descri��o", "Descrição"},
	{"Situa��o", "Situação"},
	{"Hist�rico", "Histórico"},
	{"T�tulo", "Título"},
	{"D�bito", "Débito"},
	{"Cr�dito", "Crédito"},
	{"Sa�da", "Saída"},
}

// RepairMojibake applies the normalizer's substitution tables to text that
// survived a bad decode. Replacement characters with no known repair collapse
// to a single space so they never leak into matching keys.
func (n *Normalizer) RepairMojibake(s string) string {
	for _, r := range n.wordRepairs {
		s = strings.ReplaceAll(s, r.from, r.to)
	}

	for _, r := range n.repairs {
		s = strings.ReplaceAll(s, r.from, r.to)
	}

	if strings.ContainsRune(s, '�') {
		s = strings.ReplaceAll(s, "�", " ")
	}

	return s
}
