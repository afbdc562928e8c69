package usecase

import (
	"fmt"
	"strings"

	"github.com/xilidan/meetnotes/services/meeting/entity"
)

const systemPrompt = "You are a helpful assistant that always responds with valid JSON."

const promptTemplate = `Please analyze this transcription and provide the response in the following JSON format:

{
    "summary": "A professionally written bullet-point list of the key discussion points from the meeting. Each bullet point should be concise and clearly state the essential point.",
    "tasks": "A professionally written, structured bullet-point list of action items assigned to each participant. Include the name of the participant and their respective tasks. Keep it clear and actionable.",
    "timecodes": "A professionally written bullet-point list of important moments, each starting with a timestamp in HH:MM:SS format, followed by a brief, clear description of what occurred or was decided at that moment."
}

Meeting title:
%s

Context:
This is a transcription of a video-call in a company that %s.

Language:
Provide the answer in the same language as the initial transcription.

Participants:
%s

Transcription:
%s

Constraints:
- Return ONLY valid JSON without any additional text or formatting.
- The JSON object must contain exactly the keys "summary", "tasks" and "timecodes", each with a string value.
- The content of the JSON values should maintain a professional and concise tone.
- Use bullet points within the strings by starting lines with a dash and a space ("- ") for clarity.
- The summary, tasks, and timecodes should each be contained in a single string, with line breaks between bullet points if desired.`

func buildPrompt(title, businessDescription string, participants []entity.Participant, transcript string) string {
	lines := make([]string, 0, len(participants))
	for _, p := range participants {
		lines = append(lines, fmt.Sprintf("- %s (%s)", p.Name, p.Position))
	}

	return fmt.Sprintf(promptTemplate,
		strings.TrimSpace(title),
		strings.TrimSpace(businessDescription),
		strings.Join(lines, "\n"),
		transcript,
	)
}
