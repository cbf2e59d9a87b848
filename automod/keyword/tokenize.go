package keyword

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)
	// characters commonly used to mask letters ("сп.ам", "к.а.з.и.н.о")
	maskChars = regexp.MustCompile(`[.*_@$-]`)
)

// Splits free-form text in to tokens, including lower-case, unicode normalization, and folding of diacritics ("ё" becomes "е", "й" becomes "и").
//
// Word lists must be normalized the same way (see [NormalizeToken]) to match.
func TokenizeText(text string) []string {
	// this function needs to be re-defined in every function call to prevent a race condition
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	bare := strings.ToLower(nonTokenChars.ReplaceAllString(text, " "))
	normed, _, err := transform.String(normFunc, bare)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		normed = bare
	}
	return strings.Fields(normed)
}

// Like [TokenizeText], but masking characters inside words are dropped rather than splitting the word.
func TokenizeTextSkippingMasks(text string) []string {
	return TokenizeText(maskChars.ReplaceAllString(text, ""))
}

// Normalizes a single word list entry the way [TokenizeText] normalizes message text.
func NormalizeToken(s string) string {
	return strings.Join(TokenizeText(s), "")
}
