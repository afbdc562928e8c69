package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/xilidan/meetnotes/pkg/json"
	"github.com/xilidan/meetnotes/pkg/logger"
	"github.com/xilidan/meetnotes/services/meeting/entity"
)

func statusFor(code entity.ErrorCode) int {
	switch {
	case code.IsClientError():
		return http.StatusBadRequest
	case code == entity.CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case code.IsUpstreamError():
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the JSON error envelope. Internal failures get a
// generic message; the cause is exposed under details only in development.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	body := json.ErrorBody{
		Code:    string(entity.CodeInternal),
		Message: "Internal server error",
	}

	code := entity.CodeOf(err)
	var appErr *entity.Error
	if code != entity.CodeInternal && errors.As(err, &appErr) {
		body.Code = string(code)
		body.Message = appErr.Message
		body.Field = appErr.Field
		if appErr.Code.IsUpstreamError() && appErr.Err != nil {
			body.Message += ": " + appErr.Err.Error()
		}
	}

	if h.opts.Development {
		body.Details = err.Error()
	}

	status := statusFor(entity.ErrorCode(body.Code))
	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			slog.Int("status", status),
			slog.String("code", body.Code),
			slog.String("error", err.Error()))
	} else {
		log.Warn("request rejected",
			slog.Int("status", status),
			slog.String("code", body.Code),
			slog.String("error", err.Error()))
	}

	if err := json.WriteError(w, status, body); err != nil {
		log.Error("failed to write error response", slog.String("error", err.Error()))
	}
}
