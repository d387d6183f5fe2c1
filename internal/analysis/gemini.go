package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

type GeminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiCaller struct {
	models GeminiModels
	model  string
}

func NewGeminiCaller(ctx context.Context, apiKey, model string) (*GeminiCaller, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiCaller(client.Models, model), nil
}

func newGeminiCaller(models GeminiModels, model string) *GeminiCaller {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiCaller{models: models, model: model}
}

func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"strategicAnalysis": {Type: genai.TypeString},
			"riskAssessment":    {Type: genai.TypeString},
			"marketViability":   {Type: genai.TypeString},
			"recommendations": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"marketFitScore": {Type: genai.TypeNumber},
		},
		Required: []string{"strategicAnalysis", "riskAssessment", "marketViability", "recommendations", "marketFitScore"},
	}
}

func (g *GeminiCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	result, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema(),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}
