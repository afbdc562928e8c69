package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/xilidan/meetnotes/services/meeting/entity"
)

const (
	fontName    = "Times New Roman"
	fontSize    = 12
	titleSize   = 18
	sectionSize = 14
)

// Build renders the meeting result as a .docx file at path. The caller owns
// the file and must remove it.
func Build(req *entity.ReportRequest, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	addRun(doc.AddParagraph(""), strings.TrimSpace(req.Title), true, titleSize)
	doc.AddParagraph("")

	sections := []struct {
		heading string
		body    string
	}{
		{"Summary", req.GPTOutput.Summary},
		{"Tasks", req.GPTOutput.Tasks},
		{"Timecodes", req.GPTOutput.Timecodes},
		{"Transcript", req.WhisperOutput.Text},
	}
	for _, s := range sections {
		addRun(doc.AddParagraph(""), s.heading, true, sectionSize)
		for _, line := range strings.Split(s.body, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if rest, ok := strings.CutPrefix(line, "- "); ok {
				line = "• " + rest
			}
			addRun(doc.AddParagraph(""), line, false, fontSize)
		}
		doc.AddParagraph("")
	}

	if err := doc.SaveTo(path); err != nil {
		os.Remove(path)
		return fmt.Errorf("save document: %w", err)
	}

	return nil
}

// FileName derives a download name from the meeting title.
func FileName(title string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('_')
		case r < 0x20 || strings.ContainsRune(`/\:*?"<>|;`, r):
			continue
		default:
			sb.WriteRune(r)
		}
	}
	name := strings.Trim(sb.String(), "_.")
	if name == "" {
		name = "meeting"
	}
	return name + ".docx"
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
