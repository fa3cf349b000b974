package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spacesedan/fieldpulse/config"
	"github.com/spacesedan/fieldpulse/internal/analysis"
	"github.com/spacesedan/fieldpulse/internal/logging"
	"github.com/spacesedan/fieldpulse/internal/models"
	"github.com/spf13/cobra"
)

const (
	formatJSON = "json"
	formatText = "text"
)

func main() {
	config.LoadEnv(config.AppEnv())
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	var format string

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Score the sentiment of feedback and extract its keywords",
		Long: `Analyze farmer feedback from the command line.

With arguments, the arguments are joined into one feedback text. Without
arguments, every non-blank line read from stdin is analyzed on its own.

Examples:
  analyze "The crop yield was excellent this year!"
  analyze --format text < feedback.txt
  analyze --lexicon-overlay config/lexicon/agriculture.yaml "Blight hit the potatoes"`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(logging.NewLogger(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel), cfg.IsDev()))

			if format != formatJSON && format != formatText {
				return fmt.Errorf("unknown format %q, want %s or %s", format, formatJSON, formatText)
			}

			analyzer := analysis.FromConfig(cfg)
			if err := analyzer.Load(); err != nil {
				return err
			}

			write := resultWriter(cmd.OutOrStdout(), format)

			if len(args) > 0 {
				return analyzeOne(analyzer, strings.Join(args, " "), write)
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				line := scanner.Text()
				if strings.TrimSpace(line) == "" {
					continue
				}
				if err := analyzeOne(analyzer, line, write); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().IntVar(&cfg.KeywordTopN, "top-n", cfg.KeywordTopN, "Number of keywords to return")
	cmd.Flags().StringVar(&cfg.LexiconOverlayPath, "lexicon-overlay", cfg.LexiconOverlayPath, "YAML file with extra word valences")
	cmd.Flags().BoolVar(&cfg.StripMarkdown, "strip-markdown", cfg.StripMarkdown, "Reduce markdown input to plain text before analysis")
	cmd.Flags().StringVar(&cfg.KeywordTokenizer, "tokenizer", cfg.KeywordTokenizer, "Keyword tokenizer: unicode or whitespace")
	cmd.Flags().StringVar(&format, "format", formatJSON, "Output format: json or text")

	return cmd
}

func analyzeOne(analyzer *analysis.Analyzer, text string, write func(models.AnalysisResult) error) error {
	result, err := analyzer.Analyze(text)
	if err != nil {
		return err
	}
	return write(result)
}

func resultWriter(w io.Writer, format string) func(models.AnalysisResult) error {
	if format == formatText {
		return func(r models.AnalysisResult) error {
			_, err := fmt.Fprintf(w, "%s (%.2f) compound=%.4f keywords: %s\n",
				r.Sentiment, r.Confidence, r.Scores.Compound, strings.Join(r.Keywords, ", "))
			return err
		}
	}

	enc := json.NewEncoder(w)
	return func(r models.AnalysisResult) error {
		return enc.Encode(r)
	}
}
