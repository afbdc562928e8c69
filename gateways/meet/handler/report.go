package handler

import (
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xilidan/meetnotes/gateways/meet/report"
	"github.com/xilidan/meetnotes/pkg/json"
	"github.com/xilidan/meetnotes/pkg/logger"
	"github.com/xilidan/meetnotes/services/meeting/consts"
	"github.com/xilidan/meetnotes/services/meeting/entity"
)

// MeetingReport handles POST /api/meeting-report and returns a .docx export
// of a previously processed meeting.
func (h *Handler) MeetingReport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Info("meeting report request received")

	r.Body = http.MaxBytesReader(w, r.Body, consts.FormOverhead)

	var req entity.ReportRequest
	if err := json.ParseJSON(r, &req); err != nil {
		h.writeError(w, r, entity.WrapError(entity.CodeInvalidReportRequest, "Invalid report request body", err))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.writeError(w, r, entity.NewFieldError(entity.CodeInvalidReportRequest, consts.FieldTitle, "Missing required field: title"))
		return
	}

	path := filepath.Join(h.opts.TempDir, h.opts.Names.FileName("docx"))
	if err := report.Build(&req, path); err != nil {
		h.writeError(w, r, err)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Error("failed to remove report file", slog.String("error", err.Error()))
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", consts.ReportContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": report.FileName(req.Title),
	}))
	http.ServeContent(w, r, "", time.Now(), f)

	log.Info("meeting report sent", slog.String("title", req.Title))
}
