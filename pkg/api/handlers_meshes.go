package api

import (
	"net/http"
)

func (s *Server) handleMeshes(w http.ResponseWriter, r *http.Request) {
	s.NewMethodRouter(w, r).Get(func() {
		meshes := s.gateway.Meshes()
		out := make([]MeshResponse, 0, len(meshes))
		for _, m := range meshes {
			out = append(out, meshToResponse(m))
		}
		s.respondJSON(w, http.StatusOK, MeshListResponse{
			Meshes: out,
			Count:  len(out),
		})
	}).NotAllowed()
}

// handleMeshByID serves /api/v1/gateway/meshes/{id}.
func (s *Server) handleMeshByID(w http.ResponseWriter, r *http.Request) {
	id, rest, ok := s.NewPathExtractor(w, r).ExtractID("/api/v1/gateway/meshes/")
	if !ok {
		return
	}
	if rest != "" {
		s.respondError(w, http.StatusNotFound, KindNotFound, "Unknown resource")
		return
	}

	s.NewMethodRouter(w, r).Get(func() {
		m, err := s.gateway.Mesh(id)
		if err != nil {
			s.respondDomainError(w, "get mesh", err)
			return
		}
		s.respondJSON(w, http.StatusOK, meshToResponse(m))
	}).NotAllowed()
}
