package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"thrive-chatbot/pkg"
)

const analysisAPIVersion = "2024-04-01-preview"

// AnalysisConfig configures the conversational-analysis backend.
type AnalysisConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
	Timeout    time.Duration
}

// AnalysisClient talks to the conversational-analysis query API.  The API
// accepts a single conversation item, so Complete flattens the transcript.
type AnalysisClient struct {
	url        string
	apiKey     string
	deployment string
	httpClient *http.Client
}

type analysisRequest struct {
	Kind          string             `json:"kind"`
	AnalysisInput analysisInput      `json:"analysisInput"`
	Parameters    analysisParameters `json:"parameters"`
}

type analysisInput struct {
	ConversationItem conversationItem `json:"conversationItem"`
	IsLoggingEnabled bool             `json:"isLoggingEnabled"`
}

type conversationItem struct {
	ParticipantID string `json:"participantId"`
	ID            string `json:"id"`
	Modality      string `json:"modality"`
	Language      string `json:"language"`
	Text          string `json:"text"`
}

type analysisParameters struct {
	DeploymentName string  `json:"deploymentName"`
	Temperature    float32 `json:"temperature"`
	TopP           float32 `json:"topP"`
	MaxTokens      int     `json:"maxTokens"`
}

type analysisResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
}

// NewAnalysisClient constructs a conversational-analysis backed Client.
func NewAnalysisClient(cfg AnalysisConfig) *AnalysisClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnalysisClient{
		url:        strings.TrimRight(cfg.Endpoint, "/") + "/language/:query-text?api-version=" + analysisAPIVersion,
		apiKey:     cfg.APIKey,
		deployment: cfg.Deployment,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Complete sends the transcript as one text block of "role: content" lines.
func (c *AnalysisClient) Complete(ctx context.Context, messages []pkg.Message, opts Options) (string, error) {
	var sb strings.Builder
	for i, m := range messages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return c.query(ctx, sb.String(), opts.Temperature, singleTopP, opts.MaxTokens)
}

// CompleteSingle sends prompt as the conversation item text.
func (c *AnalysisClient) CompleteSingle(ctx context.Context, prompt string) (string, error) {
	return c.query(ctx, prompt, singleTemperature, singleTopP, singleMaxTokens)
}

func (c *AnalysisClient) query(ctx context.Context, text string, temperature, topP float32, maxTokens int) (string, error) {
	body, err := json.Marshal(analysisRequest{
		Kind: "Conversation",
		AnalysisInput: analysisInput{
			ConversationItem: conversationItem{
				ParticipantID: "user1",
				ID:            "1",
				Modality:      "text",
				Language:      "en",
				Text:          text,
			},
		},
		Parameters: analysisParameters{
			DeploymentName: c.deployment,
			Temperature:    temperature,
			TopP:           topP,
			MaxTokens:      maxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", pkg.ErrExternalAPI, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", &pkg.TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &pkg.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &pkg.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out analysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &pkg.TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	reply := strings.TrimSpace(out.Result.Response)
	if reply == "" {
		return "", fmt.Errorf("%w: empty response", pkg.ErrExternalAPI)
	}
	return reply, nil
}
