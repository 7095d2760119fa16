package core

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"thrive-chatbot/internal/metrics"
	"thrive-chatbot/pkg"
)

func TestIngest_ShortTextReturnedUnchanged(t *testing.T) {
	client := &fakeLLM{reply: "unused"}
	text := strings.Repeat("a", DefaultSummaryThreshold)
	in := NewIngestor(fakeExtractor{text: text}, client, zap.NewNop(), nil)

	out, err := in.Ingest(context.Background(), []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, text, out)
	assert.Empty(t, client.calls)
}

func TestIngest_LongTextIsSummarizedOnce(t *testing.T) {
	client := &fakeLLM{reply: "- iron low"}
	text := strings.Repeat("b", DefaultSummaryThreshold+1)
	m := metrics.NewCollector()
	in := NewIngestor(fakeExtractor{text: text}, client, zap.NewNop(), m)

	out, err := in.Ingest(context.Background(), []byte("%PDF"))

	require.NoError(t, err)
	assert.Equal(t, "- iron low", out)
	require.Len(t, client.calls, 1)
	call := client.calls[0]
	require.Len(t, call.Messages, 2)
	assert.Equal(t, pkg.Message{Role: pkg.RoleSystem, Content: SummarySystemPrompt}, call.Messages[0])
	assert.Equal(t, SummaryInstruction+text, call.Messages[1].Content)
	assert.InDelta(t, 0.5, call.Opts.Temperature, 0.0001)
	assert.Equal(t, 800, call.Opts.MaxTokens)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ingestions.WithLabelValues("summarized")))
}

func TestIngest_ThresholdCountsCharactersNotBytes(t *testing.T) {
	client := &fakeLLM{reply: "unused"}
	text := strings.Repeat("é", DefaultSummaryThreshold)
	in := NewIngestor(fakeExtractor{text: text}, client, nil, nil)

	out, err := in.Ingest(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, text, out)
	assert.Empty(t, client.calls)
}

func TestIngest_ExtractFailure(t *testing.T) {
	m := metrics.NewCollector()
	in := NewIngestor(fakeExtractor{err: errBoom}, &fakeLLM{}, nil, m)

	_, err := in.Ingest(context.Background(), []byte("junk"))

	assert.ErrorIs(t, err, pkg.ErrIngestion)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Ingestions.WithLabelValues("failed")))
}

func TestIngest_SummaryFailure(t *testing.T) {
	client := &fakeLLM{err: &pkg.TransportError{Err: errBoom}}
	in := NewIngestor(fakeExtractor{text: strings.Repeat("c", 5000)}, client, nil, nil)

	_, err := in.Ingest(context.Background(), nil)

	assert.ErrorIs(t, err, pkg.ErrIngestion)
	assert.ErrorIs(t, err, pkg.ErrExternalAPI)
}

func TestIngest_EmptySummary(t *testing.T) {
	in := NewIngestor(fakeExtractor{text: strings.Repeat("c", 5000)}, &fakeLLM{reply: ""}, nil, nil)

	_, err := in.Ingest(context.Background(), nil)

	assert.ErrorIs(t, err, pkg.ErrIngestion)
}
