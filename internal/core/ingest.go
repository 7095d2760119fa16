package core

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"thrive-chatbot/internal/document"
	"thrive-chatbot/internal/llm"
	"thrive-chatbot/internal/metrics"
	"thrive-chatbot/pkg"
)

// DefaultSummaryThreshold is the document length, in characters, above
// which the text is summarized before use.
const DefaultSummaryThreshold = 3000

// Ingestor turns an uploaded PDF into the document text cached on a
// session.  Long documents are condensed with one summarization request.
type Ingestor struct {
	Extractor document.Extractor
	LLM       llm.Client
	Threshold int
	Logger    *zap.Logger
	Metrics   *metrics.Collector
}

// NewIngestor constructs an Ingestor with the default threshold.
func NewIngestor(extractor document.Extractor, client llm.Client, logger *zap.Logger, m *metrics.Collector) *Ingestor {
	return &Ingestor{
		Extractor: extractor,
		LLM:       client,
		Threshold: DefaultSummaryThreshold,
		Logger:    logger,
		Metrics:   m,
	}
}

// Ingest extracts the text of pdf and summarizes it when it exceeds the
// threshold.  Every failure wraps pkg.ErrIngestion.
func (in *Ingestor) Ingest(ctx context.Context, pdf []byte) (string, error) {
	text, err := in.Extractor.Extract(pdf)
	if err != nil {
		in.Metrics.ObserveIngestion("failed")
		if !errors.Is(err, pkg.ErrIngestion) {
			err = fmt.Errorf("%w: %w", pkg.ErrIngestion, err)
		}
		return "", err
	}

	n := utf8.RuneCountInString(text)
	if n <= in.threshold() {
		in.Metrics.ObserveIngestion("raw")
		in.logger().Debug("document ingested", zap.Int("chars", n))
		return text, nil
	}

	summary, err := in.LLM.Complete(ctx, []pkg.Message{
		{Role: pkg.RoleSystem, Content: SummarySystemPrompt},
		{Role: pkg.RoleUser, Content: SummaryInstruction + text},
	}, llm.Options{Temperature: summaryTemperature, MaxTokens: summaryMaxTokens})
	if err != nil {
		in.Metrics.ObserveIngestion("failed")
		return "", fmt.Errorf("%w: summarize: %w", pkg.ErrIngestion, err)
	}
	if summary == "" {
		in.Metrics.ObserveIngestion("failed")
		return "", fmt.Errorf("%w: summarize: empty summary", pkg.ErrIngestion)
	}

	in.Metrics.ObserveIngestion("summarized")
	in.logger().Info("document summarized", zap.Int("chars", n), zap.Int("summary_chars", utf8.RuneCountInString(summary)))
	return summary, nil
}

func (in *Ingestor) threshold() int {
	if in.Threshold <= 0 {
		return DefaultSummaryThreshold
	}
	return in.Threshold
}

func (in *Ingestor) logger() *zap.Logger {
	if in.Logger == nil {
		return zap.NewNop()
	}
	return in.Logger
}
