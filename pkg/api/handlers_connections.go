package api

import (
	"net/http"
)

func (s *Server) handleConnections(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Get(func() {
		conns := s.gateway.Connections()
		s.respondJSON(w, http.StatusOK, ConnectionsResponse{
			Connections: conns,
			Count:       len(conns),
		})
	}).NotAllowed()
}

// handleConnection serves /api/v1/gateway/connections/{id} and
// /api/v1/gateway/connections/{id}/syncs.
func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	id, rest, ok := s.NewPathExtractor(w, r).ExtractID("/api/v1/gateway/connections/")
	if !ok {
		return
	}

	switch rest {
	case "":
		s.NewMethodRouter(w, r).Get(func() {
			conn, err := s.gateway.Connection(id)
			if err != nil {
				s.respondDomainError(w, "get connection", err)
				return
			}
			s.respondJSON(w, http.StatusOK, conn)
		}).Delete(func() {
			conn, err := s.gateway.Disconnect(id)
			if err != nil {
				s.respondDomainError(w, "disconnect", err)
				return
			}
			s.respondJSON(w, http.StatusOK, conn)
		}).NotAllowed()

	case "syncs":
		s.NewMethodRouter(w, r).Get(func() {
			events, err := s.gateway.SyncHistory(id)
			if err != nil {
				s.respondDomainError(w, "sync history", err)
				return
			}
			s.respondJSON(w, http.StatusOK, SyncHistoryResponse{
				ConnectionID: id,
				Syncs:        events,
				Count:        len(events),
			})
		}).NotAllowed()

	default:
		s.respondError(w, http.StatusNotFound, KindNotFound, "Unknown resource")
	}
}
