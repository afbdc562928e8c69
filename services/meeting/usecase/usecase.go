package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/xilidan/meetnotes/pkg/logger"
	"github.com/xilidan/meetnotes/services/meeting/entity"
)

// Transcriber turns a staged audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, req *entity.TranscribeRequest) (*entity.TranscriptionResult, error)
}

// Summarizer returns the raw model text for a prompt.
type Summarizer interface {
	Summarize(ctx context.Context, req *entity.SummarizeRequest) (string, error)
}

type Usecase interface {
	ProcessMeeting(ctx context.Context, req *entity.UploadRequest) (*entity.ProcessMeetingResponse, error)
}

type Timeouts struct {
	Transcription time.Duration
	Summarization time.Duration
}

type usecase struct {
	transcriber Transcriber
	summarizer  Summarizer
	timeouts    Timeouts
}

func New(transcriber Transcriber, summarizer Summarizer, timeouts Timeouts) Usecase {
	return &usecase{
		transcriber: transcriber,
		summarizer:  summarizer,
		timeouts:    timeouts,
	}
}

// ProcessMeeting expects a validated request. Transcription runs first and
// summarization only starts once a non-empty transcript exists.
func (u *usecase) ProcessMeeting(ctx context.Context, req *entity.UploadRequest) (*entity.ProcessMeetingResponse, error) {
	log := logger.FromContext(ctx).With(
		slog.String("title", req.Title),
		slog.String("file", req.File.Name),
	)

	log.Info("starting transcription", slog.Int64("size", req.File.Size))
	start := time.Now()

	transcription, err := u.transcribe(ctx, req)
	if err != nil {
		log.Error("transcription failed", slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("transcription completed",
		slog.Int("chars", len(transcription.Text)),
		slog.Duration("took", time.Since(start)),
	)

	start = time.Now()
	raw, err := u.summarize(ctx, req, transcription.Text)
	if err != nil {
		log.Error("summarization failed", slog.String("error", err.Error()))
		return nil, err
	}

	summary, ok := decodeSummary(raw)
	if !ok {
		log.Warn("summary is not valid JSON, using placeholder", slog.String("raw", raw))
		summary = entity.PlaceholderSummary()
	}

	log.Info("summarization completed", slog.Duration("took", time.Since(start)))

	return &entity.ProcessMeetingResponse{
		WhisperOutput: *transcription,
		GPTOutput:     summary,
	}, nil
}

func (u *usecase) transcribe(ctx context.Context, req *entity.UploadRequest) (*entity.TranscriptionResult, error) {
	ctx, cancel := withTimeout(ctx, u.timeouts.Transcription)
	defer cancel()

	result, err := u.transcriber.Transcribe(ctx, &entity.TranscribeRequest{
		FilePath: req.File.Path,
		FileName: req.File.Name,
	})
	if err != nil {
		return nil, entity.WrapError(entity.CodeTranscriptionFailed, "Failed to transcribe audio", err)
	}
	if result == nil || strings.TrimSpace(result.Text) == "" {
		return nil, entity.NewError(entity.CodeTranscriptionFailed, "Failed to transcribe audio: empty transcription")
	}

	return result, nil
}

func (u *usecase) summarize(ctx context.Context, req *entity.UploadRequest, transcript string) (string, error) {
	ctx, cancel := withTimeout(ctx, u.timeouts.Summarization)
	defer cancel()

	raw, err := u.summarizer.Summarize(ctx, &entity.SummarizeRequest{
		SystemPrompt: systemPrompt,
		Prompt:       buildPrompt(req.Title, req.BusinessDescription, req.Participants, transcript),
	})
	if err != nil {
		return "", entity.WrapError(entity.CodeSummarizationFailed, "Failed to generate summary", err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", entity.NewError(entity.CodeSummarizationFailed, "Failed to generate summary: empty response")
	}

	return raw, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// decodeSummary accepts only a JSON object whose summary, tasks and
// timecodes keys are all strings.
func decodeSummary(raw string) (entity.SummaryResult, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fields); err != nil || fields == nil {
		return entity.SummaryResult{}, false
	}

	summary, ok1 := fields["summary"].(string)
	tasks, ok2 := fields["tasks"].(string)
	timecodes, ok3 := fields["timecodes"].(string)
	if !ok1 || !ok2 || !ok3 {
		return entity.SummaryResult{}, false
	}

	return entity.SummaryResult{
		Summary:   summary,
		Tasks:     tasks,
		Timecodes: timecodes,
	}, true
}
