package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xilidan/meetnotes/services/meeting/entity"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
	got   *entity.TranscribeRequest
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req *entity.TranscribeRequest) (*entity.TranscriptionResult, error) {
	f.calls++
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &entity.TranscriptionResult{Text: f.text}, nil
}

type fakeSummarizer struct {
	raw   string
	err   error
	calls int
	got   *entity.SummarizeRequest
	block bool
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req *entity.SummarizeRequest) (string, error) {
	f.calls++
	f.got = req
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.raw, nil
}

func testRequest() *entity.UploadRequest {
	return &entity.UploadRequest{
		File:                &entity.AudioFile{Name: "sync.m4a", Size: 10, Path: "/tmp/abc.m4a"},
		Title:               "Sprint planning",
		Participants:        []entity.Participant{{Name: "Anna", Position: "PM"}, {Name: "Ivan", Position: "Backend"}},
		BusinessDescription: "builds delivery robots",
	}
}

func TestProcessMeeting(t *testing.T) {
	tests := []struct {
		name           string
		transcriber    *fakeTranscriber
		summarizer     *fakeSummarizer
		wantCode       entity.ErrorCode
		wantSummary    entity.SummaryResult
		wantSummarizes int
	}{
		{
			name:        "valid summary passes through verbatim",
			transcriber: &fakeTranscriber{text: "hello team"},
			summarizer: &fakeSummarizer{
				raw: `{"summary":"- S","tasks":"- T","timecodes":"- 00:00:01 start"}`,
			},
			wantSummary:    entity.SummaryResult{Summary: "- S", Tasks: "- T", Timecodes: "- 00:00:01 start"},
			wantSummarizes: 1,
		},
		{
			name:           "non json response becomes placeholder",
			transcriber:    &fakeTranscriber{text: "hello team"},
			summarizer:     &fakeSummarizer{raw: "Sure! Here is your summary."},
			wantSummary:    entity.PlaceholderSummary(),
			wantSummarizes: 1,
		},
		{
			name:           "missing key becomes placeholder",
			transcriber:    &fakeTranscriber{text: "hello team"},
			summarizer:     &fakeSummarizer{raw: `{"summary":"- S","tasks":"- T"}`},
			wantSummary:    entity.PlaceholderSummary(),
			wantSummarizes: 1,
		},
		{
			name:           "non string value becomes placeholder",
			transcriber:    &fakeTranscriber{text: "hello team"},
			summarizer:     &fakeSummarizer{raw: `{"summary":"- S","tasks":["a"],"timecodes":"- t"}`},
			wantSummary:    entity.PlaceholderSummary(),
			wantSummarizes: 1,
		},
		{
			name:           "json array becomes placeholder",
			transcriber:    &fakeTranscriber{text: "hello team"},
			summarizer:     &fakeSummarizer{raw: `["summary"]`},
			wantSummary:    entity.PlaceholderSummary(),
			wantSummarizes: 1,
		},
		{
			name:           "transcription error skips summarization",
			transcriber:    &fakeTranscriber{err: errors.New("upstream 500")},
			summarizer:     &fakeSummarizer{raw: "{}"},
			wantCode:       entity.CodeTranscriptionFailed,
			wantSummarizes: 0,
		},
		{
			name:           "empty transcription skips summarization",
			transcriber:    &fakeTranscriber{text: "   "},
			summarizer:     &fakeSummarizer{raw: "{}"},
			wantCode:       entity.CodeTranscriptionFailed,
			wantSummarizes: 0,
		},
		{
			name:           "summarization error",
			transcriber:    &fakeTranscriber{text: "hello team"},
			summarizer:     &fakeSummarizer{err: errors.New("rate limited")},
			wantCode:       entity.CodeSummarizationFailed,
			wantSummarizes: 1,
		},
		{
			name:           "empty summarization response",
			transcriber:    &fakeTranscriber{text: "hello team"},
			summarizer:     &fakeSummarizer{raw: ""},
			wantCode:       entity.CodeSummarizationFailed,
			wantSummarizes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := New(tt.transcriber, tt.summarizer, Timeouts{Transcription: time.Second, Summarization: time.Second})

			resp, err := uc.ProcessMeeting(context.Background(), testRequest())

			if tt.summarizer.calls != tt.wantSummarizes {
				t.Errorf("summarizer calls = %d, want %d", tt.summarizer.calls, tt.wantSummarizes)
			}
			if tt.transcriber.calls != 1 {
				t.Errorf("transcriber calls = %d, want 1", tt.transcriber.calls)
			}

			if tt.wantCode != "" {
				if err == nil {
					t.Fatalf("ProcessMeeting() error = nil, want %s", tt.wantCode)
				}
				if code := entity.CodeOf(err); code != tt.wantCode {
					t.Errorf("CodeOf() = %s, want %s", code, tt.wantCode)
				}
				if resp != nil {
					t.Errorf("resp = %+v, want nil", resp)
				}
				return
			}

			if err != nil {
				t.Fatalf("ProcessMeeting() error = %v", err)
			}
			if resp.WhisperOutput.Text != tt.transcriber.text {
				t.Errorf("WhisperOutput.Text = %q, want %q", resp.WhisperOutput.Text, tt.transcriber.text)
			}
			if resp.GPTOutput != tt.wantSummary {
				t.Errorf("GPTOutput = %+v, want %+v", resp.GPTOutput, tt.wantSummary)
			}
		})
	}
}

func TestProcessMeetingPassesRequestData(t *testing.T) {
	tr := &fakeTranscriber{text: "we agreed to ship on friday"}
	sm := &fakeSummarizer{raw: `{"summary":"a","tasks":"b","timecodes":"c"}`}
	uc := New(tr, sm, Timeouts{})

	if _, err := uc.ProcessMeeting(context.Background(), testRequest()); err != nil {
		t.Fatalf("ProcessMeeting() error = %v", err)
	}

	if tr.got.FilePath != "/tmp/abc.m4a" || tr.got.FileName != "sync.m4a" {
		t.Errorf("transcribe request = %+v", tr.got)
	}
	if sm.got.SystemPrompt != systemPrompt {
		t.Errorf("SystemPrompt = %q", sm.got.SystemPrompt)
	}

	for _, want := range []string{
		"Sprint planning",
		"builds delivery robots",
		"- Anna (PM)\n- Ivan (Backend)",
		"we agreed to ship on friday",
		`"summary"`, `"tasks"`, `"timecodes"`,
	} {
		if !strings.Contains(sm.got.Prompt, want) {
			t.Errorf("prompt does not contain %q", want)
		}
	}
}

func TestProcessMeetingSummarizationTimeout(t *testing.T) {
	sm := &fakeSummarizer{block: true}
	uc := New(&fakeTranscriber{text: "hi"}, sm, Timeouts{Summarization: 20 * time.Millisecond})

	_, err := uc.ProcessMeeting(context.Background(), testRequest())
	if entity.CodeOf(err) != entity.CodeSummarizationFailed {
		t.Fatalf("CodeOf() = %s, want %s", entity.CodeOf(err), entity.CodeSummarizationFailed)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want wrapped deadline exceeded", err)
	}
}

func TestDecodeSummary(t *testing.T) {
	got, ok := decodeSummary("  \n{\"summary\":\"x\",\"tasks\":\"\",\"timecodes\":\"z\",\"extra\":1}\n")
	if !ok {
		t.Fatal("decodeSummary() ok = false, want true")
	}
	if got.Summary != "x" || got.Tasks != "" || got.Timecodes != "z" {
		t.Errorf("decodeSummary() = %+v", got)
	}

	if _, ok := decodeSummary("null"); ok {
		t.Error("decodeSummary(null) ok = true, want false")
	}
}
