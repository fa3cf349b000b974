package keywords

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

var ErrInvalidUTF8 = errors.New("text is not valid UTF-8")

// Tokenizer splits text into word-like units. An error tells the extractor
// to fall back to whitespace splitting for that call.
type Tokenizer interface {
	Tokenize(text string) ([]string, error)
}

// UnicodeTokenizer segments text on Unicode (UAX #29) word boundaries and
// then splits English clitics off the way the Penn Treebank tokenizer does.
// Whitespace segments are discarded; punctuation segments are kept.
type UnicodeTokenizer struct{}

func (UnicodeTokenizer) Tokenize(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidUTF8
	}

	var tokens []string
	state := -1
	for rest := text; len(rest) > 0; {
		var segment string
		segment, rest, state = uniseg.FirstWordInString(rest, state)
		if strings.TrimSpace(segment) == "" {
			continue
		}
		tokens = append(tokens, splitClitics(segment)...)
	}

	return tokens, nil
}

var cliticSuffixes = []string{"'s", "'m", "'d", "'ll", "'re", "'ve"}

// splitClitics turns "didn't" into ["did", "n't"] and "farmer's" into ["farmer", "'s"].
func splitClitics(word string) []string {
	w := strings.ReplaceAll(word, "’", "'")
	if !strings.Contains(w, "'") {
		return []string{word}
	}

	lower := strings.ToLower(w)
	if strings.HasSuffix(lower, "n't") && len(w) > len("n't") {
		cut := len(w) - len("n't")
		return []string{w[:cut], w[cut:]}
	}
	for _, suffix := range cliticSuffixes {
		if strings.HasSuffix(lower, suffix) && len(w) > len(suffix) {
			cut := len(w) - len(suffix)
			return []string{w[:cut], w[cut:]}
		}
	}

	return []string{w}
}
