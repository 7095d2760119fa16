package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"thrive-chatbot/pkg"
)

// Options tune a single Complete call.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// Client is the completion service used by the chat and ingestion flows.
// Complete replays the full transcript; CompleteSingle sends one free-text
// prompt for the single-shot coach.
type Client interface {
	Complete(ctx context.Context, messages []pkg.Message, opts Options) (string, error)
	CompleteSingle(ctx context.Context, prompt string) (string, error)
}

// Parameters used for CompleteSingle on every backend.
const (
	singleTemperature = 0.7
	singleTopP        = 0.95
	singleMaxTokens   = 800
)

// ChatConfig configures the chat-completion backend.  When AzureEndpoint is
// set the client talks to an Azure OpenAI deployment; otherwise it uses the
// public OpenAI API with Model.
type ChatConfig struct {
	AzureEndpoint string
	APIKey        string
	APIVersion    string
	Deployment    string
	Model         string
	Timeout       time.Duration
}

// ChatClient calls the chat-completion API.  The deployment, credential and
// endpoint are fixed at construction.
type ChatClient struct {
	client *openai.Client
	model  string
}

// NewChatClient constructs a chat-completion backed Client.
func NewChatClient(cfg ChatConfig) *ChatClient {
	var oc openai.ClientConfig
	model := cfg.Model
	if cfg.AzureEndpoint != "" {
		oc = openai.DefaultAzureConfig(cfg.APIKey, cfg.AzureEndpoint)
		if cfg.APIVersion != "" {
			oc.APIVersion = cfg.APIVersion
		}
		deployment := cfg.Deployment
		oc.AzureModelMapperFunc = func(string) string { return deployment }
		model = deployment
	} else {
		oc = openai.DefaultConfig(cfg.APIKey)
	}
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &ChatClient{client: openai.NewClientWithConfig(oc), model: model}
}

// Complete sends the transcript in order and returns the trimmed content of
// the first choice.
func (c *ChatClient) Complete(ctx context.Context, messages []pkg.Message, opts Options) (string, error) {
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := string(m.Role)
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			// coerce anything unknown to user
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	return c.create(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
}

// CompleteSingle sends prompt as the only user message.
func (c *ChatClient) CompleteSingle(ctx context.Context, prompt string) (string, error) {
	return c.create(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: singleTemperature,
		TopP:        singleTopP,
		MaxTokens:   singleMaxTokens,
	})
}

func (c *ChatClient) create(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", translateOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", pkg.ErrExternalAPI)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// translateOpenAIError separates HTTP status failures from transport
// failures.
func translateOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &pkg.StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &pkg.StatusError{StatusCode: reqErr.HTTPStatusCode, Body: body}
	}
	return &pkg.TransportError{Err: err}
}
