package meet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	config "github.com/xilidan/meetnotes/config/meet"
	geminiClient "github.com/xilidan/meetnotes/gateways/meet/clients/gemini"
	openaiClient "github.com/xilidan/meetnotes/gateways/meet/clients/openai"
	"github.com/xilidan/meetnotes/gateways/meet/handler"
	"github.com/xilidan/meetnotes/gateways/meet/health"
	"github.com/xilidan/meetnotes/services/meeting/entity"
	"github.com/xilidan/meetnotes/services/meeting/usecase"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	health  *health.Checker
	handler *handler.Handler
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	log.Info("creating new meet server")
	log.Debug("server config",
		slog.Int("port", cfg.Port),
		slog.Int("health_grpc_port", cfg.HealthGRPCPort),
		slog.String("env", cfg.Env),
		slog.String("summarizer", cfg.Summarizer.Provider))

	openai := openaiClient.New(cfg.OpenAI)
	log.Info("openai client created successfully")

	var summarizer usecase.Summarizer = openai
	if cfg.Summarizer.Provider == config.ProviderGemini {
		gemini, err := geminiClient.New(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		summarizer = gemini
		log.Info("gemini client created successfully")
	}

	uc := usecase.New(openai, summarizer, usecase.Timeouts{
		Transcription: cfg.Summarizer.TranscriptionTimeout,
		Summarization: cfg.Summarizer.SummarizationTimeout,
	})

	if err := os.MkdirAll(cfg.Upload.TempDir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload temp dir: %w", err)
	}

	checker := health.New()
	h := handler.New(uc, checker, handler.Options{
		Policy: entity.UploadPolicy{
			MaxFileSize:       cfg.Upload.MaxFileSize,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
		},
		TempDir:        cfg.Upload.TempDir,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Development:    cfg.IsDevelopment(),
	}, log)

	log.Info("meet server instance created successfully")
	return &Server{
		cfg:     cfg,
		log:     log,
		health:  checker,
		handler: h,
	}, nil
}

func (s *Server) Start(ctx context.Context) error {
	s.log.Info("starting meet server")

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	// Write timeout covers both remote calls plus slack for the upload itself.
	writeTimeout := s.cfg.Summarizer.TranscriptionTimeout + s.cfg.Summarizer.SummarizationTimeout + time.Minute
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler.Routes(),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	s.log.Debug("HTTP server configured",
		slog.String("addr", addr),
		slog.Duration("write_timeout", writeTimeout))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	serverErrors := make(chan error, 2)

	go func() {
		s.log.Info("meet gateway started", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	var grpcSrv *grpc.Server
	if s.cfg.HealthGRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.HealthGRPCPort))
		if err != nil {
			srv.Close()
			return fmt.Errorf("listen grpc health: %w", err)
		}
		grpcSrv = grpc.NewServer()
		s.health.Register(grpcSrv)

		go func() {
			s.log.Info("grpc health server started", slog.String("address", lis.Addr().String()))
			if err := grpcSrv.Serve(lis); err != nil {
				serverErrors <- fmt.Errorf("grpc health: %w", err)
			}
		}()
	}

	select {
	case err := <-serverErrors:
		s.log.Error("server error received", slog.String("error", err.Error()))
		s.stop(srv, grpcSrv)
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		s.log.Info("start shutdown", slog.String("signal", sig.String()))
	case <-ctx.Done():
		s.log.Info("closing server due to context cancellation")
	}

	if err := s.stop(srv, grpcSrv); err != nil {
		return err
	}

	s.log.Info("server stopped cleanly")
	return nil
}

// stop marks the service NOT_SERVING and drains in-flight requests.
func (s *Server) stop(srv *http.Server, grpcSrv *grpc.Server) error {
	s.health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}

	s.log.Info("shutting down HTTP server gracefully", slog.Duration("timeout", shutdownTimeout))
	if err := srv.Shutdown(ctx); err != nil {
		s.log.Error("graceful shutdown failed", slog.String("error", err.Error()))
		s.log.Warn("forcing server close")
		srv.Close()
		return fmt.Errorf("failed to gracefully shutdown server: %w", err)
	}
	return nil
}
