package api

import (
	"net/http"

	"github.com/alice-platform/gateway-engine/pkg/health"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Get(func() {
		checks := s.healthChecker.Check()

		status := http.StatusOK
		if checks.Status == health.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		s.respondJSON(w, status, HealthResponse{
			Status:     string(checks.Status),
			Version:    s.version,
			UptimeSecs: int64(s.gateway.Uptime().Seconds()),
			TotalOps:   s.gateway.TotalOps(),
			Checks:     checks.Checks,
		})
	}).NotAllowed()
}
