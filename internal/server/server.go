package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/plan-parser/internal/common"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
	"github.com/joseph-ayodele/plan-parser/internal/export"
	"github.com/joseph-ayodele/plan-parser/internal/metrics"
	"github.com/joseph-ayodele/plan-parser/internal/repository"
)

// ServiceName is reported by the gRPC health service.
const ServiceName = "plan-parser"

// Deps are the collaborators behind the HTTP surface. Jobs, Export and
// Metrics are optional; their routes are omitted when nil.
type Deps struct {
	Processor FileProcessor
	Jobs      repository.AnalysisJobRepository
	Export    *export.Service
	Metrics   *metrics.Metrics
	Fallback  *entity.AnalysisResult
	Ready     func(ctx context.Context) error
	Server    common.ServerConfig
	Auth      common.AuthConfig
	Logger    *slog.Logger
}

// NewRouter builds and wires all routes.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := d.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestContext(logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	origins := d.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Job-Id", "X-Cache"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(req.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	upload := &uploadHandler{
		proc:      d.Processor,
		uploadDir: d.Server.UploadDir,
		maxBytes:  d.Server.MaxUploadBytes,
		fallback:  d.Fallback,
		logger:    logger,
	}
	if d.Metrics != nil {
		upload.observe = d.Metrics.ObserveUpload
	}

	r.Route("/api/plan", func(api chi.Router) {
		api.Use(JWTMiddleware(d.Auth))
		api.Method(http.MethodPost, "/upload", upload)

		if d.Jobs != nil {
			jobs := &jobsHandler{jobs: d.Jobs, export: d.Export, logger: logger}
			api.Get("/jobs", jobs.list)
			api.Get("/jobs/{id}", jobs.get)
			api.Get("/jobs/{id}/result", jobs.result)
			if d.Export != nil {
				api.Get("/jobs/{id}/xlsx", jobs.xlsx)
			}
		}
	})
	return r
}

// requestContext copies chi's request id into the context key the
// pipeline logs with.
func requestContext(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := middleware.GetReqID(r.Context()); id != "" {
				r = r.WithContext(common.WithRequestID(r.Context(), id))
			}
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http.request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"request_id", common.RequestIDFromContext(r.Context()),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// Server runs the HTTP API and the gRPC health endpoint.
type Server struct {
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	grpcAddr   string
	logger     *slog.Logger
}

func NewServer(d Deps) (*Server, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if d.Server.UploadDir != "" {
		if err := os.MkdirAll(d.Server.UploadDir, 0o755); err != nil {
			return nil, err
		}
	}

	hs := health.NewServer()
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	return &Server{
		httpServer: &http.Server{
			Addr:              d.Server.HTTPAddr,
			Handler:           NewRouter(d),
			ReadHeaderTimeout: 10 * time.Second,
		},
		grpcServer: gs,
		health:     hs,
		grpcAddr:   d.Server.GRPCAddr,
		logger:     logger,
	}, nil
}

// Start serves until Shutdown; it returns the first listener error.
func (s *Server) Start() error {
	errCh := make(chan error, 2)

	if s.grpcAddr != "" {
		lis, err := net.Listen("tcp", s.grpcAddr)
		if err != nil {
			return err
		}
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
		go func() {
			s.logger.Info("grpc health listening", "addr", s.grpcAddr)
			errCh <- s.grpcServer.Serve(lis)
		}()
	}

	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	return <-errCh
}

// Shutdown gracefully stops both servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down servers")
	s.health.Shutdown()
	err := s.httpServer.Shutdown(ctx)

	stopped := make(chan struct{})
	go func() { s.grpcServer.GracefulStop(); close(stopped) }()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}
	return err
}
