package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voicelens/voicelens/internal/llm"
	"github.com/voicelens/voicelens/internal/observability"
	"github.com/voicelens/voicelens/internal/types"
)

// EvaluationEngine runs text samples against stored profiles. It never
// mutates the profile it evaluates against, and it surfaces provider
// failures unchanged: falling back to another adapter is a deployment
// decision, not engine behavior.
type EvaluationEngine struct {
	port        llm.Port
	evaluations EvaluationStore
	events      *observability.Logger
}

// NewEvaluationEngine wires the evaluation engine. events may be nil.
func NewEvaluationEngine(port llm.Port, evaluations EvaluationStore, events *observability.Logger) *EvaluationEngine {
	return &EvaluationEngine{port: port, evaluations: evaluations, events: events}
}

// Evaluate scores text against a stored profile and persists the result.
func (e *EvaluationEngine) Evaluate(ctx context.Context, profile *types.VoiceProfile, text string) (*types.VoiceEvaluation, error) {
	start := time.Now()

	eval, err := e.evaluate(ctx, profile, text)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	e.events.Evaluate(profile.BrandID.String(), profile.Version, e.port.Name(), time.Since(start), outcome)

	return eval, err
}

func (e *EvaluationEngine) evaluate(ctx context.Context, profile *types.VoiceProfile, text string) (*types.VoiceEvaluation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &llm.InputError{Message: "evaluation text is empty"}
	}

	result, err := e.port.EvaluateText(ctx, llm.VoiceFromProfile(profile), text)
	if err != nil {
		return nil, err
	}

	profileID := profile.ID
	eval := &types.VoiceEvaluation{
		ID:          uuid.New(),
		BrandID:     profile.BrandID,
		ProfileID:   &profileID,
		InputText:   text,
		Scores:      result.Scores,
		Suggestions: result.Suggestions,
		CreatedAt:   time.Now().UTC(),
	}
	if eval.Suggestions == nil {
		eval.Suggestions = []string{}
	}
	if err := eval.Validate(); err != nil {
		return nil, err
	}

	if err := e.evaluations.InsertEvaluation(ctx, eval); err != nil {
		return nil, err
	}
	return eval, nil
}
