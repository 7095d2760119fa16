// Package llm wraps the hosted completion service behind a single Client
// interface.  The backend (chat completions or conversational analysis) is
// chosen once from configuration.
package llm

import (
	"context"
	"fmt"
	"time"

	"thrive-chatbot/internal/config"
	"thrive-chatbot/internal/metrics"
	"thrive-chatbot/pkg"
)

// New builds the Client selected by cfg.Backend.
func New(cfg config.CompletionConfig) (Client, error) {
	switch cfg.Backend {
	case "chat":
		apiKey := cfg.AzureAPIKey
		if cfg.AzureEndpoint == "" {
			apiKey = cfg.OpenAIKey
		}
		return NewChatClient(ChatConfig{
			AzureEndpoint: cfg.AzureEndpoint,
			APIKey:        apiKey,
			APIVersion:    cfg.AzureAPIVersion,
			Deployment:    cfg.Deployment,
			Model:         cfg.OpenAIModel,
			Timeout:       cfg.Timeout,
		}), nil
	case "analysis":
		return NewAnalysisClient(AnalysisConfig{
			Endpoint:   cfg.AnalysisEndpoint,
			APIKey:     cfg.AnalysisKey,
			Deployment: cfg.Deployment,
			Timeout:    cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown completion backend %q", cfg.Backend)
	}
}

type instrumented struct {
	next      Client
	collector *metrics.Collector
	backend   string
}

// Instrument records latency and outcome of every call made through next.
func Instrument(next Client, collector *metrics.Collector, backend string) Client {
	if collector == nil {
		return next
	}
	return &instrumented{next: next, collector: collector, backend: backend}
}

func (i *instrumented) Complete(ctx context.Context, messages []pkg.Message, opts Options) (string, error) {
	started := time.Now()
	out, err := i.next.Complete(ctx, messages, opts)
	i.collector.ObserveCompletion(i.backend, "complete", started, err)
	return out, err
}

func (i *instrumented) CompleteSingle(ctx context.Context, prompt string) (string, error) {
	started := time.Now()
	out, err := i.next.CompleteSingle(ctx, prompt)
	i.collector.ObserveCompletion(i.backend, "complete_single", started, err)
	return out, err
}
