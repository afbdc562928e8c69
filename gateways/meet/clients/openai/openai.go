package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	config "github.com/xilidan/meetnotes/config/meet"
	"github.com/xilidan/meetnotes/services/meeting/entity"
)

// Client talks to Whisper for transcription and to the chat completions API
// for summarization.
type Client struct {
	client             *openai.Client
	transcriptionModel string
	language           string
	chatModel          string
	temperature        float32
	jsonMode           bool
	log                *slog.Logger
}

func New(cfg config.OpenAIConfig) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	log := slog.Default()
	log.Debug("creating openai client",
		slog.String("base_url", clientCfg.BaseURL),
		slog.String("transcription_model", cfg.TranscriptionModel),
		slog.String("chat_model", cfg.ChatModel),
		slog.Bool("api_key_set", cfg.APIKey != ""))

	return &Client{
		client:             openai.NewClientWithConfig(clientCfg),
		transcriptionModel: cfg.TranscriptionModel,
		language:           cfg.TranscriptionLanguage,
		chatModel:          cfg.ChatModel,
		temperature:        cfg.Temperature,
		jsonMode:           cfg.JSONMode,
		log:                log,
	}
}

// Transcribe uploads the staged file. The vendor infers the format from
// the file extension, so FilePath must keep the original suffix.
func (c *Client) Transcribe(ctx context.Context, req *entity.TranscribeRequest) (*entity.TranscriptionResult, error) {
	c.log.Info("Transcribe called",
		slog.String("file", req.FileName),
		slog.String("model", c.transcriptionModel))

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcriptionModel,
		FilePath: req.FilePath,
		Language: c.language,
	})
	if err != nil {
		c.log.Error("transcription request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("create transcription: %w", err)
	}

	c.log.Debug("transcription received", slog.Int("chars", len(resp.Text)))

	return &entity.TranscriptionResult{Text: resp.Text}, nil
}

func (c *Client) Summarize(ctx context.Context, req *entity.SummarizeRequest) (string, error) {
	c.log.Info("Summarize called", slog.String("model", c.chatModel))

	chatReq := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: c.temperature,
	}
	if c.jsonMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		c.log.Error("chat completion failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", c.chatModel)
	}

	c.log.Debug("chat completion received",
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Int("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}
