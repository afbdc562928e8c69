package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/xilidan/meetnotes/pkg/gen"
	"github.com/xilidan/meetnotes/pkg/json"
	"github.com/xilidan/meetnotes/pkg/logger"
	"github.com/xilidan/meetnotes/services/meeting/consts"
	"github.com/xilidan/meetnotes/services/meeting/entity"
	"github.com/xilidan/meetnotes/services/meeting/usecase"
)

var (
	allowedMethods = []string{"GET", "OPTIONS", "PATCH", "DELETE", "POST", "PUT"}
	allowedHeaders = []string{
		"X-CSRF-Token", "X-Requested-With", "Accept", "Accept-Version", "Content-Length",
		"Content-MD5", "Content-Type", "Date", "X-Api-Version",
	}
)

type Options struct {
	Policy         entity.UploadPolicy
	TempDir        string
	AllowedOrigins []string
	Development    bool
	// Names generates staging file names; nil means random UUIDs.
	Names gen.UUIDGenerator
}

type Handler struct {
	uc     usecase.Usecase
	health http.Handler
	opts   Options
	log    *slog.Logger
}

func New(uc usecase.Usecase, health http.Handler, opts Options, log *slog.Logger) *Handler {
	log.Debug("creating new handler",
		slog.Int64("max_file_size", opts.Policy.MaxFileSize),
		slog.Any("allowed_extensions", opts.Policy.AllowedExtensions),
		slog.String("temp_dir", opts.TempDir))
	return &Handler{
		uc:     uc,
		health: health,
		opts:   opts,
		log:    log,
	}
}

// Routes builds the chi router with CORS and request logging applied.
func (h *Handler) Routes() http.Handler {
	h.log.Debug("registering HTTP routes")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     h.opts.AllowedOrigins,
		AllowedMethods:     allowedMethods,
		AllowedHeaders:     allowedHeaders,
		AllowCredentials:   true,
		OptionsPassthrough: true,
		MaxAge:             300,
	}))

	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Route("/api", func(api chi.Router) {
		api.Post("/process-meeting", h.ProcessMeeting)
		api.Options("/process-meeting", h.Preflight)
		api.Post("/meeting-report", h.MeetingReport)
		api.Options("/meeting-report", h.Preflight)
		api.Method(http.MethodGet, "/health", h.health)
	})

	h.log.Info("all routes registered successfully")
	return r
}

// Preflight answers OPTIONS with the full CORS header set, including bare
// requests that carry no Origin.
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request) {
	hdr := w.Header()
	if hdr.Get("Access-Control-Allow-Origin") == "" && len(h.opts.AllowedOrigins) > 0 {
		hdr.Set("Access-Control-Allow-Origin", h.opts.AllowedOrigins[0])
	}
	hdr.Set("Access-Control-Allow-Credentials", "true")
	hdr.Set("Access-Control-Allow-Methods", strings.Join(allowedMethods, ","))
	hdr.Set("Access-Control-Allow-Headers", strings.Join(allowedHeaders, ", "))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	logger.FromContext(r.Context()).Warn("method not allowed", slog.String("method", r.Method))
	h.writeError(w, r, entity.NewError(entity.CodeMethodNotAllowed, "Method not allowed"))
}

// ProcessMeeting handles POST /api/process-meeting.
func (h *Handler) ProcessMeeting(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Info("process meeting request received",
		slog.String("remote_addr", r.RemoteAddr),
		slog.Int64("content_length", r.ContentLength))

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.Policy.MaxFileSize+consts.FormOverhead)

	req, err := h.parseUpload(r)
	drain(r)
	defer func() {
		if err := req.Cleanup(); err != nil {
			log.Error("failed to remove staged upload", slog.String("error", err.Error()))
		}
	}()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := req.Validate(h.opts.Policy); err != nil {
		h.writeError(w, r, err)
		return
	}
	log.Debug("upload validated",
		slog.String("file", req.File.Name),
		slog.Int64("size", req.File.Size),
		slog.Int("participants", len(req.Participants)))

	resp, err := h.uc.ProcessMeeting(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := json.WriteJSON(w, http.StatusOK, resp); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
		return
	}
	log.Info("process meeting response sent")
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := h.log.With(
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), log)))

		log.Info("request completed",
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("took", time.Since(start)))
	})
}
