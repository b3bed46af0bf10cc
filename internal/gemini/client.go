// Package gemini adapts the Google Gen AI SDK to the plain-text calls the arena needs.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash-lite"

// ErrBlocked is returned when the prompt was blocked or the candidate was
// stopped by a safety, recitation or content filter.
var ErrBlocked = errors.New("gemini: response blocked")

// blockingFinishReasons end a candidate without a usable answer.
var blockingFinishReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:            true,
	genai.FinishReasonRecitation:        true,
	genai.FinishReasonLanguage:          true,
	genai.FinishReasonBlocklist:         true,
	genai.FinishReasonProhibitedContent: true,
	genai.FinishReasonSPII:              true,
}

// Client sends generation requests to a single model.
type Client struct {
	client *genai.Client
	model  string
}

// Option customizes a Client.
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(url string) Option {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = url
	}
}

// NewClient creates a Client for the Gemini API backend.
func NewClient(ctx context.Context, apiKey, model string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string { return c.model }

// Generate returns the model's reply to message, given a system instruction and prior history.
func (c *Client) Generate(ctx context.Context, instruction string, history []Message, message string) (string, error) {
	return c.Chat(ctx, ChatRequest{
		SystemInstruction: instruction,
		History:           history,
		Message:           message,
	})
}

// Chat sends one request built from req and returns the reply text.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		contents = append(contents, genai.NewContentFromText(m.Text, toRole(m.Role)))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: mimeOrDefault(req.ResponseMIMEType),
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	return c.generate(ctx, contents, cfg)
}

// GenerateOnce sends a single prompt with no history.
func (c *Client) GenerateOnce(ctx context.Context, prompt, mimeType string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	return c.generate(ctx, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: mimeOrDefault(mimeType),
	})
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if err := blocked(resp); err != nil {
		return "", err
	}
	// Empty text is a valid reply and is returned as is.
	return resp.Text(), nil
}

func blocked(resp *genai.GenerateContentResponse) error {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return fmt.Errorf("%w: prompt blocked (%s)", ErrBlocked, resp.PromptFeedback.BlockReason)
		}
		return nil
	}
	if c := resp.Candidates[0]; c != nil && blockingFinishReasons[c.FinishReason] {
		return fmt.Errorf("%w: finish reason %s", ErrBlocked, c.FinishReason)
	}
	return nil
}

func toRole(role string) genai.Role {
	if role == RoleModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}

func mimeOrDefault(mime string) string {
	if mime == "" {
		return MIMEText
	}
	return mime
}
