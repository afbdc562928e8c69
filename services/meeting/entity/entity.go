package entity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xilidan/meetnotes/services/meeting/consts"
)

type (
	AudioFile struct {
		Name string
		Size int64
		// Path is empty when the part was not staged (unsupported type).
		Path string
	}

	Participant struct {
		Name     string `json:"name"`
		Position string `json:"position"`
	}

	UploadRequest struct {
		File                *AudioFile
		Title               string
		ParticipantsRaw     string
		Participants        []Participant
		BusinessDescription string
	}

	TranscriptionResult struct {
		Text string `json:"text"`
	}

	SummaryResult struct {
		Summary   string `json:"summary"`
		Tasks     string `json:"tasks"`
		Timecodes string `json:"timecodes"`
	}

	ProcessMeetingResponse struct {
		WhisperOutput TranscriptionResult `json:"whisper_output"`
		GPTOutput     SummaryResult       `json:"gpt_output"`
	}

	TranscribeRequest struct {
		FilePath string
		FileName string
	}

	SummarizeRequest struct {
		SystemPrompt string
		Prompt       string
	}

	ReportRequest struct {
		Title string `json:"title"`
		ProcessMeetingResponse
	}
)

// UploadPolicy carries the configured limits for an upload.
type UploadPolicy struct {
	MaxFileSize       int64
	AllowedExtensions []string
}

// PlaceholderSummary is substituted when the model response cannot be decoded.
func PlaceholderSummary() SummaryResult {
	return SummaryResult{
		Summary:   consts.PlaceholderSummary,
		Tasks:     consts.PlaceholderTasks,
		Timecodes: consts.PlaceholderTimecodes,
	}
}

// Extension returns the lower-cased filename suffix without the dot.
func Extension(fileName string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
}

func (p UploadPolicy) Allows(fileName string) bool {
	ext := Extension(fileName)
	if ext == "" {
		return false
	}
	for _, allowed := range p.AllowedExtensions {
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}

// Validate checks the request in a fixed order: file presence, file type,
// file size, required fields, participants format. On success Participants
// is populated.
func (r *UploadRequest) Validate(p UploadPolicy) error {
	if r.File == nil || r.File.Size == 0 {
		return NewError(CodeMissingFile, "No file provided")
	}
	if !p.Allows(r.File.Name) {
		return NewError(CodeUnsupportedFileType, "Unsupported file type")
	}
	if r.File.Size > p.MaxFileSize {
		return FileTooLargeError(p.MaxFileSize)
	}

	fields := []struct {
		name  string
		value string
	}{
		{consts.FieldTitle, r.Title},
		{consts.FieldParticipants, r.ParticipantsRaw},
		{consts.FieldBusinessDescription, r.BusinessDescription},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return NewFieldError(CodeMissingField, f.name, "Missing required field: "+f.name)
		}
	}

	participants, err := ParseParticipants(r.ParticipantsRaw)
	if err != nil {
		return err
	}
	r.Participants = participants

	return nil
}

// ParseParticipants decodes a JSON array of {name, position} objects.
func ParseParticipants(raw string) ([]Participant, error) {
	var items []*Participant
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, WrapError(CodeInvalidParticipantsFormat, "Invalid participants format", err)
	}
	if len(items) == 0 {
		return nil, NewError(CodeInvalidParticipantsFormat, "Invalid participants format: at least one participant is required")
	}

	participants := make([]Participant, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, NewError(CodeInvalidParticipantsFormat, fmt.Sprintf("Invalid participants format: participant %d is null", i))
		}
		name := strings.TrimSpace(item.Name)
		position := strings.TrimSpace(item.Position)
		if name == "" || position == "" {
			return nil, NewError(CodeInvalidParticipantsFormat, fmt.Sprintf("Invalid participants format: participant %d needs name and position", i))
		}
		participants = append(participants, Participant{Name: name, Position: position})
	}

	return participants, nil
}

// Cleanup removes the staged upload file, if any.
func (r *UploadRequest) Cleanup() error {
	if r == nil || r.File == nil || r.File.Path == "" {
		return nil
	}
	err := os.Remove(r.File.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	r.File.Path = ""
	return nil
}
