// Package llm defines the model port for voice profile generation and text
// evaluation, with a deterministic stub adapter and a Gemini-backed provider
// adapter. Orchestration code depends only on the Port interface and never
// branches on adapter identity.
package llm

import (
	"context"

	"github.com/voicelens/voicelens/internal/types"
)

// Port is the capability pair every model adapter implements.
type Port interface {
	// GenerateVoiceProfile infers a voice profile draft from site text
	// and/or writing samples. At least one of the two must be non-empty.
	GenerateVoiceProfile(ctx context.Context, req GenerateRequest) (*Draft, error)
	// EvaluateText scores a text sample against a voice and derives
	// actionable suggestions. Text must be non-empty.
	EvaluateText(ctx context.Context, voice Voice, text string) (*Evaluation, error)
	// Name identifies the adapter for logging and the llm_model field.
	Name() string
}

// GenerateRequest carries the collected inputs for one generation call.
type GenerateRequest struct {
	BrandName string
	// SiteText is the sanitized text resolved from the caller's URLs,
	// empty when none were given or none resolved.
	SiteText string
	// Samples are the caller's manual writing samples.
	Samples []string
	// Model is the requested model identifier; adapters may interpret or
	// ignore it, but it always participates in the input fingerprint.
	Model string
	// Source is derived by the engine from which input kinds were present.
	Source types.Source
}

// Draft is the adapter's proposed profile content, before the engine
// assembles it into a versioned VoiceProfile.
type Draft struct {
	Metrics           types.Metrics `json:"metrics"`
	TargetDemographic string        `json:"target_demographic"`
	StyleGuide        []string      `json:"style_guide"`
	WritingExample    string        `json:"writing_example"`
	Source            types.Source  `json:"source"`
}

// Voice is the profile view an evaluation runs against; built either from a
// stored profile or a fresh draft.
type Voice struct {
	Metrics           types.Metrics
	TargetDemographic string
	StyleGuide        []string
	WritingExample    string
}

// VoiceFromProfile projects a stored profile into the evaluation view.
func VoiceFromProfile(p *types.VoiceProfile) Voice {
	return Voice{
		Metrics:           p.Metrics,
		TargetDemographic: p.TargetDemographic,
		StyleGuide:        p.StyleGuide,
		WritingExample:    p.WritingExample,
	}
}

// Evaluation is the adapter's scoring of one text sample.
type Evaluation struct {
	Scores      types.Metrics `json:"scores"`
	Suggestions []string      `json:"suggestions"`
}

// ToolBroker mediates the fetch tool a model may invoke mid-generation.
// Implemented by the broker package; the provider adapter treats it as the
// only legitimate side channel during a generation turn.
type ToolBroker interface {
	// FetchPageText fetches, extracts and sanitizes one page. Budget and
	// validation failures return an error the adapter renders back to the
	// model as a failed tool result without aborting the generation.
	FetchPageText(ctx context.Context, url string) (string, error)
}
