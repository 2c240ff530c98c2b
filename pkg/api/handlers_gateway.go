package api

import (
	"net/http"

	"github.com/alice-platform/gateway-engine/pkg/validation"
)

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Post(func() {
		var req validation.ConnectRequest
		if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateConnect(&req).RespondError() {
			return
		}

		conn, err := s.gateway.Connect(req.DeviceID, req.Protocol, req.Region)
		if err != nil {
			s.respondDomainError(w, "connect", err)
			return
		}
		s.respondJSON(w, http.StatusOK, conn)
	}).NotAllowed()
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Post(func() {
		var req validation.SyncRequest
		if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateSync(&req).RespondError() {
			return
		}

		evt, err := s.gateway.Sync(req.ConnectionID, req.SDFDelta, req.Timestamp)
		if err != nil {
			s.respondDomainError(w, "sync", err)
			return
		}
		s.respondJSON(w, http.StatusOK, SyncResponse{
			SyncID:              evt.ID,
			Status:              "completed",
			ObjectsSynced:       evt.ObjectsSynced,
			SDFBytesTransferred: evt.BytesTransferred,
			LatencyMs:           evt.LatencyMs,
		})
	}).NotAllowed()
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Post(func() {
		var req validation.TransformRequest
		if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateTransform(&req).RespondError() {
			return
		}

		result, err := s.gateway.Transform(req.SourceProtocol, req.TargetProtocol, req.Payload)
		if err != nil {
			s.respondDomainError(w, "transform", err)
			return
		}
		s.respondJSON(w, http.StatusOK, result)
	}).NotAllowed()
}

func (s *Server) handleMesh(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Post(func() {
		var req validation.MeshRequest
		if s.NewRequestDecoder(w, r).DecodeJSON(&req).ValidateMesh(&req).RespondError() {
			return
		}

		m, err := s.gateway.BuildMesh(req.Devices, req.Topology)
		if err != nil {
			s.respondDomainError(w, "mesh", err)
			return
		}
		s.respondJSON(w, http.StatusOK, meshToResponse(m))
	}).NotAllowed()
}

func (s *Server) handleProtocols(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Get(func() {
		protocols := s.gateway.Protocols()
		s.respondJSON(w, http.StatusOK, ProtocolsResponse{
			Protocols: protocols,
			Count:     len(protocols),
		})
	}).NotAllowed()
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Get(func() {
		s.respondJSON(w, http.StatusOK, s.gateway.Stats())
	}).NotAllowed()
}
