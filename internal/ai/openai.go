package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/ObiAU/newsfanout/internal/models"
)

const DefaultModel = "gpt-4o-mini"

// Digester writes a short prose digest of a result set.
type Digester interface {
	Digest(ctx context.Context, phrase string, articles []models.Article) (string, error)
}

type OpenAIClient struct {
	client openai.Client
	model  string
}

func NewOpenAIClient(apiKey, model string, opts ...option.RequestOption) *OpenAIClient {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Digest summarizes articles for phrase. It never reorders or drops
// articles; an empty result set gives an empty digest without a request.
func (c *OpenAIClient) Digest(ctx context.Context, phrase string, articles []models.Article) (string, error) {
	if len(articles) == 0 {
		return "", nil
	}

	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a news editor. Write neutral, factual digests of the headlines you are given. Do not invent facts."),
			openai.UserMessage(buildDigestPrompt(phrase, articles)),
		},
		Temperature:         openai.Float(0.2),
		MaxCompletionTokens: openai.Int(400),
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func buildDigestPrompt(phrase string, articles []models.Article) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write a digest of at most 5 sentences about %q using only these articles.\n", phrase))
	sb.WriteString("Mention the outlet when attributing a claim.\n\n")

	for i, article := range articles {
		sb.WriteString(fmt.Sprintf("Article %d:\n", i+1))
		sb.WriteString(fmt.Sprintf("Source: %s\n", article.Source))
		if article.Title != "" {
			sb.WriteString(fmt.Sprintf("Title: %s\n", article.Title))
		}
		if article.Description != "" {
			sb.WriteString(fmt.Sprintf("Description: %s\n", article.Description))
		}
		if article.Timestamp > 0 {
			sb.WriteString(fmt.Sprintf("Published: %s\n", article.PublishedAt().Format(time.RFC3339)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
