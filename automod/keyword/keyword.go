// Word-list text classifier: tokenizes message text and matches tokens against named sets of explicit words and word stems.
//
// This is a simple stand-in for a real content model; anything implementing `Classify(text string) bool` can take its place.
package keyword

import (
	"context"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"github.com/truemoder/truemoder/automod/setstore"
)

const (
	DefaultWordSet = "explicit-words"
	DefaultStemSet = "explicit-stems"
	DefaultMinStem = 3
)

var linkPattern = regexp.MustCompile(`(?i)(https?://|www\.|t\.me/|telegram\.me/)`)

type Classifier struct {
	Sets setstore.SetStore
	// set of whole tokens
	WordSet string
	// set of token prefixes, so inflected forms match
	StemSet string
	// shortest prefix looked up in StemSet, in runes
	MinStem int
	// treat any link as a violation
	BlockLinks bool
	Logger     *slog.Logger
}

func NewClassifier(sets setstore.SetStore) *Classifier {
	return &Classifier{
		Sets:    sets,
		WordSet: DefaultWordSet,
		StemSet: DefaultStemSet,
		MinStem: DefaultMinStem,
		Logger:  slog.Default(),
	}
}

func (c *Classifier) Classify(text string) bool {
	return c.Match(text) != ""
}

// Returns the first matching token (or "link"), or empty string if nothing matched.
func (c *Classifier) Match(text string) string {
	if c.BlockLinks && linkPattern.MatchString(text) {
		return "link"
	}
	if tok := c.matchTokens(TokenizeText(text)); tok != "" {
		return tok
	}
	return c.matchTokens(TokenizeTextSkippingMasks(text))
}

func (c *Classifier) matchTokens(tokens []string) string {
	for _, tok := range tokens {
		if c.matchToken(tok) {
			return tok
		}
	}
	// letters spelled out one by one: "к а з и н о"
	for _, run := range letterRuns(tokens) {
		if c.matchToken(run) {
			return run
		}
	}
	return ""
}

func (c *Classifier) matchToken(tok string) bool {
	if c.inSet(c.WordSet, tok) {
		return true
	}
	if c.StemSet == "" {
		return false
	}
	min := c.MinStem
	if min < 1 {
		min = 1
	}
	n := 0
	for i := range tok {
		if n >= min && c.inSet(c.StemSet, tok[:i]) {
			return true
		}
		n++
	}
	return n >= min && c.inSet(c.StemSet, tok)
}

func (c *Classifier) inSet(name, tok string) bool {
	if name == "" {
		return false
	}
	ok, err := c.Sets.InSet(context.Background(), name, tok)
	if err != nil {
		c.Logger.Warn("word set lookup failed", "set", name, "err", err)
		return false
	}
	return ok
}

// Joins consecutive single-letter tokens; runs shorter than three letters are skipped.
func letterRuns(tokens []string) []string {
	var out []string
	run := ""
	count := 0
	flush := func() {
		if count >= 3 {
			out = append(out, run)
		}
		run = ""
		count = 0
	}
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) == 1 {
			run += tok
			count++
			continue
		}
		flush()
	}
	flush()
	return out
}
