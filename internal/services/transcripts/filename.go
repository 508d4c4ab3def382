package transcripts

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackFilename = "upload"

var umlauts = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue", "ẞ", "SS",
)

// SecureFilename reduces an untrusted filename to ASCII letters, digits and
// "._-". Directory parts are dropped and accents folded. Whitespace runs
// become "_", any other rune is removed; an empty result becomes "upload".
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	name = umlauts.Replace(name)
	fold := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, name); err == nil {
		name = folded
	}

	var b strings.Builder
	inSpace := false
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_'):
			b.WriteRune(r)
			inSpace = false
		default:
			inSpace = false
		}
	}

	out := b.String()
	for strings.Contains(out, "..") {
		out = strings.ReplaceAll(out, "..", ".")
	}
	out = strings.Trim(out, "._")
	if out == "" || strings.Trim(out, "-") == "" {
		return fallbackFilename
	}
	return out
}

// Title derives a display title from a secured filename
func Title(secureName string) string {
	ext := filepath.Ext(secureName)
	title := strings.TrimSuffix(secureName, ext)
	if title == "" {
		return secureName
	}
	return title
}
