package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	config "github.com/xilidan/meetnotes/config/meet"
	"github.com/xilidan/meetnotes/services/meeting/entity"
)

// Client summarizes transcripts with the Gemini GenerateContent API.
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	log         *slog.Logger
}

func New(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	log := slog.Default()
	log.Debug("creating gemini client",
		slog.String("model", cfg.Model),
		slog.Float64("temperature", float64(cfg.Temperature)),
		slog.String("base_url", cfg.BaseURL),
		slog.Bool("api_key_set", cfg.APIKey != ""))

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		log:         log,
	}, nil
}

func (c *Client) Summarize(ctx context.Context, req *entity.SummarizeRequest) (string, error) {
	c.log.Info("Summarize called", slog.String("model", c.model))

	genCfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.temperature),
		ResponseMIMEType: "application/json",
	}
	if req.SystemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		c.log.Error("generate content failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from %s", c.model)
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	c.log.Debug("gemini response received", slog.Int("chars", sb.Len()))

	return sb.String(), nil
}
