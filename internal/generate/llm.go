package generate

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ColourfulRhythm/subxtwitterbo/internal/config"
)

const llmPrompt = `Write one tweet (max 270 characters) persuading Nigerians to
redirect betting money into fractional land ownership. Concrete numbers in
naira, direct tone, end with @1Subx. Output only the tweet text.`

// LLMGenerator asks an OpenAI chat model for tweet text.
type LLMGenerator struct {
	client *openai.Client
	model  string
}

func NewLLM(cfg config.LLMConfig) *LLMGenerator {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &LLMGenerator{client: openai.NewClient(cfg.APIKey), model: model}
}

func (g *LLMGenerator) Generate(ctx context.Context) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: 120,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: llmPrompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	text = strings.Trim(text, `"`)
	if text == "" {
		return "", errors.New("llm returned empty text")
	}
	return text, nil
}
