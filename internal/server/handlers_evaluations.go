package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/voicelens/voicelens/internal/types"
)

// ---------------------------------------------------------------------
// Evaluation Handlers
// ---------------------------------------------------------------------

type EvaluateRequest struct {
	Text    string `json:"text" validate:"required"`
	Version int    `json:"version" validate:"omitempty,min=1"` // 0 means latest
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	brandID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	var (
		profile *types.VoiceProfile
		err     error
	)
	if req.Version > 0 {
		profile, err = s.profiles.ByVersion(r.Context(), brandID, req.Version)
	} else {
		profile, err = s.profiles.Latest(r.Context(), brandID)
	}
	if err != nil {
		s.domainError(w, err)
		return
	}

	eval, err := s.evaluations.Evaluate(r.Context(), profile, req.Text)
	if err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, eval)
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	brandID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	evals, err := s.store.ListEvaluations(r.Context(), brandID, limit)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, evals)
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	evalID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	eval, err := s.store.GetEvaluation(r.Context(), evalID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, eval)
}
