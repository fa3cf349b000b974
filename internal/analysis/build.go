package analysis

import (
	"log/slog"

	"github.com/spacesedan/fieldpulse/config"
	"github.com/spacesedan/fieldpulse/internal/keywords"
	"github.com/spacesedan/fieldpulse/internal/sentiment"
)

// FromConfig wires a scorer and extractor as cfg describes. The scorer is
// not loaded; call Load to fail fast at startup.
func FromConfig(cfg *config.Config, opts ...Option) *Analyzer {
	scorer := sentiment.NewScorer(sentiment.WithOverlay(cfg.LexiconOverlayPath))

	extractorOpts := []keywords.ExtractorOption{
		keywords.WithTopN(cfg.KeywordTopN),
		keywords.WithExtraStopwords(cfg.KeywordExtraStopwords...),
	}
	switch cfg.KeywordTokenizer {
	case config.TokenizerUnicode:
	case config.TokenizerWhitespace:
		extractorOpts = append(extractorOpts, keywords.WithTokenizer(nil))
	default:
		slog.Warn("[Analysis] Unknown keyword tokenizer, using unicode",
			slog.String("tokenizer", cfg.KeywordTokenizer))
	}

	base := []Option{
		WithMarkdownStripping(cfg.StripMarkdown),
		WithTopN(cfg.KeywordTopN),
	}
	return NewAnalyzer(scorer, keywords.NewExtractor(extractorOpts...), append(base, opts...)...)
}
