package consts

const (
	// Multipart form fields
	FieldFile                = "file"
	FieldTitle               = "title"
	FieldParticipants        = "participants"
	FieldBusinessDescription = "business_description"

	// Per text field cap and multipart framing allowance on top of the file ceiling
	MaxFieldSize = 1 << 20
	FormOverhead = 10 << 20

	// Summary placeholders used when the model response is not valid JSON
	PlaceholderSummary   = "Could not generate summary due to processing error."
	PlaceholderTasks     = "Could not generate tasks due to processing error."
	PlaceholderTimecodes = "Could not generate timecodes due to processing error."

	ReportContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DefaultAllowedExtensions is the union of the formats accepted by the
// transcription vendor.
var DefaultAllowedExtensions = []string{"mp3", "mp4", "mpeg", "mpga", "m4a", "wav", "webm"}
