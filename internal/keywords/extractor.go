// Package keywords ranks the most frequent content words of a text.
//
// Two paths exist. The primary path tokenizes on Unicode word boundaries,
// keeps purely alphabetic tokens that are not stopwords and ranks them by
// frequency, ties going to the earliest token. The fallback path splits on
// whitespace, trims punctuation, keeps tokens longer than three characters
// and returns the first distinct ones in text order. The fallback does not
// rank and will not match the primary output for the same text.
//
// An Extractor is immutable after construction and safe for concurrent use.
package keywords

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultTopN = 5

	fallbackMinRunes = 4
	fallbackTrimSet  = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Path names the strategy that produced a keyword list.
type Path string

const (
	PathPrimary  Path = "primary"
	PathFallback Path = "fallback"
)

type Extractor struct {
	tokenizer Tokenizer
	stopwords StopwordSet
	topN      int
}

type ExtractorOption func(*Extractor)

// WithTokenizer sets the primary tokenizer. A nil tokenizer disables the
// primary path and every call uses the fallback.
func WithTokenizer(t Tokenizer) ExtractorOption {
	return func(e *Extractor) {
		e.tokenizer = t
	}
}

func WithExtraStopwords(words ...string) ExtractorOption {
	return func(e *Extractor) {
		e.stopwords = NewStopwordSet(words...)
	}
}

// WithTopN sets the default list size used when a call passes topN <= 0.
func WithTopN(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.topN = n
		}
	}
}

func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		tokenizer: UnicodeTokenizer{},
		stopwords: NewStopwordSet(),
		topN:      DefaultTopN,
	}
	for _, opt := range opts {
		opt(e)
	}

	if !e.PrimaryAvailable() {
		slog.Warn("[Keywords] Primary tokenizer disabled, keyword ranking degraded to whitespace fallback")
	}
	return e
}

func (e *Extractor) PrimaryAvailable() bool {
	return e.tokenizer != nil
}

// Extract returns up to topN keywords. It never fails.
func (e *Extractor) Extract(text string, topN int) []string {
	keywords, _ := e.ExtractWithPath(text, topN)
	return keywords
}

// ExtractWithPath is Extract plus the path that produced the result.
func (e *Extractor) ExtractWithPath(text string, topN int) ([]string, Path) {
	if topN <= 0 {
		topN = e.topN
	}

	lowered := cases.Lower(language.English).String(text)

	if !e.PrimaryAvailable() {
		return e.fallback(lowered, topN), PathFallback
	}

	tokens, err := e.tokenizer.Tokenize(lowered)
	if err != nil {
		slog.Debug("[Keywords] Tokenization degraded, using whitespace fallback",
			slog.String("error", err.Error()))
		return e.fallback(lowered, topN), PathFallback
	}

	return e.rank(tokens, topN), PathPrimary
}

func (e *Extractor) rank(tokens []string, topN int) []string {
	counts := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if !isAlpha(tok) || e.stopwords.Contains(tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return cmp.Compare(counts[b], counts[a])
	})

	if len(order) > topN {
		order = order[:topN]
	}
	return nonNil(order)
}

func (e *Extractor) fallback(lowered string, topN int) []string {
	seen := make(map[string]struct{})
	var keywords []string
	for _, field := range strings.Fields(lowered) {
		if len(keywords) == topN {
			break
		}
		tok := strings.Trim(field, fallbackTrimSet)
		if utf8.RuneCountInString(tok) < fallbackMinRunes || e.stopwords.Contains(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return nonNil(keywords)
}

func isAlpha(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
