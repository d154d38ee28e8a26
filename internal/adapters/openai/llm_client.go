package openai

import (
	"context"
	"fmt"

	"github.com/mikey/pr-contact-miner/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You classify PR and marketing emails. Respond only with JSON."

// OpenAIClient is an implementation of the LLMClient interface using OpenAI
type OpenAIClient struct {
	client         *openai.Client
	modelName      string
	maxTokens      int
	temperature    float32
	topP           float32
	maxPromptBytes int
	logger         *zap.Logger
	textProcessor  *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxPromptBytes int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:         client,
		modelName:      modelName,
		maxTokens:      maxTokens,
		temperature:    temperature,
		topP:           topP,
		maxPromptBytes: maxPromptBytes,
		logger:         logger,
		textProcessor:  textProcessor,
	}
}

// Complete sends the prompt as a single user message
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: c.textProcessor.TruncateText(prompt, c.maxPromptBytes),
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	c.logger.Debug("OpenAI completion received",
		zap.String("model", c.modelName),
		zap.String("response_id", resp.ID),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}
