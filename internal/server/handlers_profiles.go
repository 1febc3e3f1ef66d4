package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/voicelens/voicelens/internal/types"
)

// ---------------------------------------------------------------------
// Voice Profile Handlers
// ---------------------------------------------------------------------

type GenerateProfileRequest struct {
	URLs           []string `json:"urls" validate:"omitempty,dive,url"`
	WritingSamples []string `json:"writing_samples"`
	Model          string   `json:"model"`
}

func (s *Server) handleGenerateProfile(w http.ResponseWriter, r *http.Request) {
	brandID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req GenerateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	inputs := types.GenerateInputs{URLs: req.URLs, WritingSamples: req.WritingSamples}
	profile, err := s.profiles.Generate(r.Context(), brandID, inputs, s.modelOrDefault(req.Model))
	if err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, profile)
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	brandID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	profiles, err := s.profiles.List(r.Context(), brandID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profiles)
}

func (s *Server) handleLatestProfile(w http.ResponseWriter, r *http.Request) {
	brandID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	profile, err := s.profiles.Latest(r.Context(), brandID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

func (s *Server) handleProfileByVersion(w http.ResponseWriter, r *http.Request) {
	brandID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	version, err := strconv.Atoi(r.PathValue("version"))
	if err != nil || version < 1 {
		s.errorResponse(w, http.StatusBadRequest, "Invalid version in path")
		return
	}

	profile, err := s.profiles.ByVersion(r.Context(), brandID, version)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// modelOrDefault falls back to the configured model when the request does
// not name one.
func (s *Server) modelOrDefault(model string) string {
	if model != "" {
		return model
	}
	return s.defaultModel
}
