// Package llm wraps the OpenAI client used for embeddings and chat
// completions. API keys are resolved at call time so operators can
// rotate keys in the key store without restarting the service.
package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tradeboard/tradeboard/internal/config"
)

// Client calls the OpenAI API for embeddings and chat completions
type Client struct {
	cfg config.OpenAIConfig
}

// NewClient creates an OpenAI client wrapper
func NewClient(cfg config.OpenAIConfig) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) api(apiKey string) openai.Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if c.cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.cfg.BaseURL))
	}
	return openai.NewClient(opts...)
}

// Embed returns one embedding vector per input text, in order.
func (c *Client) Embed(ctx context.Context, apiKey string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	client := c.api(apiKey)
	resp, err := client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openai.EmbeddingModel(c.cfg.EmbeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response size mismatch: got %d, want %d", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors[d.Index] = vec
	}

	return vectors, nil
}

// Complete runs a single-turn chat completion and returns the answer text.
func (c *Client) Complete(ctx context.Context, apiKey, systemPrompt, userPrompt string) (string, error) {
	client := c.api(apiKey)
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model: openai.ChatModel(c.cfg.ChatModel),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
