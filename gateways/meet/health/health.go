package health

import (
	"log/slog"
	"net/http"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xilidan/meetnotes/pkg/json"
)

// Service is the name reported for the meeting pipeline; "" is the overall status.
const Service = "meetnotes.MeetingService"

// Checker holds serving state shared by the HTTP probe and the gRPC health service.
type Checker struct {
	srv *health.Server
}

func New() *Checker {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	srv.SetServingStatus(Service, healthpb.HealthCheckResponse_SERVING)
	return &Checker{srv: srv}
}

func (c *Checker) Register(g *grpc.Server) {
	healthpb.RegisterHealthServer(g, c.srv)
}

// Shutdown flips every service to NOT_SERVING. It is not reversible.
func (c *Checker) Shutdown() {
	c.srv.Shutdown()
}

// ServeHTTP answers GET /api/health with a protojson HealthCheckResponse.
func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	service := r.URL.Query().Get("service")

	resp, err := c.srv.Check(r.Context(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		slog.Debug("health check for unknown service", slog.String("service", service))
		resp = &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVICE_UNKNOWN}
		json.WriteProtoJSON(w, http.StatusNotFound, resp)
		return
	}

	status := http.StatusOK
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		status = http.StatusServiceUnavailable
	}
	json.WriteProtoJSON(w, status, resp)
}
