// Package ai generates issue summaries with Google's Gemini models.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"civicsync/feed"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("summary generation is not configured")

// GeminiGenerator implements feed.SummaryGenerator on the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator using apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// GenerateSummary asks the model for a short plain-text summary of req.
func (g *GeminiGenerator) GenerateSummary(ctx context.Context, req feed.SummaryRequest) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(req)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", feed.ErrEmptySummary
	}
	return text, nil
}

// Model returns the configured model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Disabled is used when no API key is configured. Every call fails, so
// privileged viewers see the fallback text.
type Disabled struct{}

func (Disabled) GenerateSummary(context.Context, feed.SummaryRequest) (string, error) {
	return "", ErrNotConfigured
}

// BuildPrompt renders the summarization instruction for req.
func BuildPrompt(req feed.SummaryRequest) string {
	lines := []string{
		"You are an assistant that summarizes civic issue reports for municipal officials.",
		"Produce a concise, factual summary (2-3 sentences) that highlights key points and potential community impact.",
		"Do not add titles, labels, markdown, or asterisks; only output the plain summary text.",
		"Title: " + req.Title,
	}
	if req.Address != "" {
		lines = append(lines, "Location: "+req.Address)
	}

	if len(req.ImageURLs) > 0 {
		lines = append(lines, "Images (public URLs):")
		for i, u := range req.ImageURLs {
			lines = append(lines, fmt.Sprintf("Image %d: %s", i+1, u))
		}
		lines = append(lines, "In the summary, directly describe any visible damage, hazards, or landmarks from the images without mentioning that they are images or attachments.")
	}

	return strings.Join(lines, "\n")
}
