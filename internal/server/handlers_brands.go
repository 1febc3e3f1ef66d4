package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------
// Brand Handlers
// ---------------------------------------------------------------------

type CreateBrandRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	SiteURL string `json:"site_url" validate:"omitempty,url"`
}

func (s *Server) handleCreateBrand(w http.ResponseWriter, r *http.Request) {
	var req CreateBrandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	brand, err := s.store.CreateBrand(r.Context(), req.Name, req.SiteURL)
	if err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, brand)
}

func (s *Server) handleListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := s.store.ListBrands(r.Context())
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, brands)
}

func (s *Server) handleGetBrand(w http.ResponseWriter, r *http.Request) {
	brandID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	brand, err := s.store.GetBrand(r.Context(), brandID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, brand)
}

func (s *Server) handleDeleteBrand(w http.ResponseWriter, r *http.Request) {
	brandID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteBrand(r.Context(), brandID); err != nil {
		s.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathUUID parses a UUID path segment, writing a 400 on failure.
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid "+name+" in path")
		return uuid.Nil, false
	}
	return id, true
}
