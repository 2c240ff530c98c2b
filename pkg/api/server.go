// Package api is the HTTP surface of the gateway engine. Handlers decode and
// validate requests, call into the gateway coordinator, and render JSON
// responses; all domain errors are mapped to the error envelope here.
package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alice-platform/gateway-engine/pkg/api/middleware"
	"github.com/alice-platform/gateway-engine/pkg/gateway"
	"github.com/alice-platform/gateway-engine/pkg/graphql"
	"github.com/alice-platform/gateway-engine/pkg/health"
	"github.com/alice-platform/gateway-engine/pkg/logging"
)

// Version reported by /health.
const Version = "1.0.0"

// Server represents the HTTP API server
type Server struct {
	gateway        *gateway.Gateway
	healthChecker  *health.HealthChecker
	graphqlHandler *graphql.GraphQLHandler
	logger         logging.Logger

	corsConfig   *middleware.CORSConfig
	maxBodyBytes int64
	startTime    time.Time
	version      string
}

// NewServer creates a new API server around a gateway coordinator.
func NewServer(gw *gateway.Gateway, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("api"))

	schema, err := graphql.GenerateSchema(gw)
	var graphqlHandler *graphql.GraphQLHandler
	if err != nil {
		logger.Warn("failed to generate GraphQL schema", logging.Error(err))
	} else {
		graphqlHandler = graphql.NewGraphQLHandler(schema)
	}

	s := &Server{
		gateway:        gw,
		graphqlHandler: graphqlHandler,
		logger:         logger,
		corsConfig:     middleware.DefaultCORSConfig(),
		maxBodyBytes:   1 << 20,
		startTime:      time.Now(),
		version:        Version,
	}
	s.healthChecker = s.buildHealthChecker()
	return s
}

// SetCORSConfig sets the CORS configuration for the server
func (s *Server) SetCORSConfig(cfg *middleware.CORSConfig) {
	s.corsConfig = cfg
}

// SetMaxBodyBytes overrides the request body size limit.
func (s *Server) SetMaxBodyBytes(n int64) {
	if n > 0 {
		s.maxBodyBytes = n
	}
}

// RegisterHealthCheck adds a check to the /health report for subsystems
// wired up outside the server, such as the event broadcaster.
func (s *Server) RegisterHealthCheck(name string, check health.CheckFunc) {
	s.healthChecker.RegisterCheck(name, check)
}

func (s *Server) buildHealthChecker() *health.HealthChecker {
	hc := health.NewHealthChecker()

	hc.RegisterCheck("connection_table", health.ConnectionTableCheck(func() (int, int) {
		return s.gateway.ActiveConnections(), len(s.gateway.Connections())
	}))
	hc.RegisterCheck("protocol_registry", health.ProtocolRegistryCheck(func() int {
		return len(s.gateway.Protocols())
	}))
	hc.RegisterCheck("memory", health.MemoryCheck())

	hc.RegisterReadinessCheck("protocol_registry", health.ProtocolRegistryCheck(func() int {
		return len(s.gateway.Protocols())
	}))
	hc.RegisterLivenessCheck("process", func() health.Check {
		return health.SimpleCheck("process")
	})

	return hc
}

// Handler builds the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/ready", s.healthChecker.ReadinessHandler())
	mux.HandleFunc("/health/live", s.healthChecker.LivenessHandler())
	mux.Handle("/metrics", s.metricsHandler())

	// Gateway operations
	mux.HandleFunc("/api/v1/gateway/connect", s.handleConnect)
	mux.HandleFunc("/api/v1/gateway/sync", s.handleSync)
	mux.HandleFunc("/api/v1/gateway/transform", s.handleTransform)
	mux.HandleFunc("/api/v1/gateway/mesh", s.handleMesh)

	// Gateway state
	mux.HandleFunc("/api/v1/gateway/connections", s.handleConnections)
	mux.HandleFunc("/api/v1/gateway/connections/", s.handleConnection) // /connections/{id}[/syncs]
	mux.HandleFunc("/api/v1/gateway/meshes", s.handleMeshes)
	mux.HandleFunc("/api/v1/gateway/meshes/", s.handleMeshByID) // /meshes/{id}
	mux.HandleFunc("/api/v1/gateway/protocols", s.handleProtocols)
	mux.HandleFunc("/api/v1/gateway/stats", s.handleStats)

	// GraphQL endpoint
	mux.HandleFunc("/api/v1/gateway/graphql", s.handleGraphQL)

	handler := http.Handler(mux)
	handler = middleware.BodySizeLimit(s.maxBodyBytes)(handler)
	handler = middleware.CORS(s.corsConfig)(handler)
	handler = middleware.SecurityHeaders(nil)(handler)
	handler = middleware.Metrics(s.gateway.Metrics())(handler)
	handler = middleware.Logging(s.logger, middleware.GetRequestID)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.PanicRecovery(s.logger)(handler)
	return handler
}

// metricsHandler serves the Prometheus exposition, refreshing the uptime
// gauge on every scrape.
func (s *Server) metricsHandler() http.Handler {
	registry := s.gateway.Metrics()
	promHandler := promhttp.HandlerFor(registry.GetPrometheusRegistry(), promhttp.HandlerOpts{})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		registry.SetUptime(s.gateway.Uptime())
		promHandler.ServeHTTP(w, r)
	})
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if s.graphqlHandler == nil {
		s.respondError(w, http.StatusServiceUnavailable, KindInternal, "GraphQL endpoint not available")
		return
	}
	s.graphqlHandler.ServeHTTP(w, r)
}
