// Package types defines the core domain records for brand voice profiling.
package types

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metric names recognized in profiles and evaluations. The key set is
// closed: a metrics map is valid only if it contains exactly these five.
const (
	MetricWarmth       = "warmth"
	MetricSeriousness  = "seriousness"
	MetricTechnicality = "technicality"
	MetricFormality    = "formality"
	MetricPlayfulness  = "playfulness"
)

// MetricKeys returns the recognized metric names in sorted order.
func MetricKeys() []string {
	return []string{
		MetricFormality,
		MetricPlayfulness,
		MetricSeriousness,
		MetricTechnicality,
		MetricWarmth,
	}
}

// Metrics maps each recognized metric name to a score in [0,1].
type Metrics map[string]float64

// Validate checks that the key set is exactly the five recognized metrics
// and that every value lies in [0,1].
func (m Metrics) Validate() error {
	keys := MetricKeys()
	if len(m) != len(keys) {
		return &ValidationError{Field: "metrics", Message: fmt.Sprintf("expected exactly %d metrics, got %d", len(keys), len(m))}
	}
	for _, key := range keys {
		v, ok := m[key]
		if !ok {
			return &ValidationError{Field: "metrics", Message: fmt.Sprintf("missing metric %q", key)}
		}
		if v < 0 || v > 1 {
			return &ValidationError{Field: "metrics", Message: fmt.Sprintf("metric %q out of range: %g", key, v)}
		}
	}
	return nil
}

// SortedNames returns the metric names present in the map, sorted.
func (m Metrics) SortedNames() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source describes which kind of input produced a voice profile.
type Source string

// Source values: site when only URLs were given, manual when only writing
// samples were given, mixed when both.
const (
	SourceSite   Source = "site"
	SourceManual Source = "manual"
	SourceMixed  Source = "mixed"
)

// Valid reports whether s is one of the three recognized source values.
func (s Source) Valid() bool {
	return s == SourceSite || s == SourceManual || s == SourceMixed
}

// Brand is the identity anchor profiles hang off of. The core treats it as
// an opaque reference; creation and mutation live in the HTTP layer.
type Brand struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SiteURL   string    `json:"site_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// VoiceProfile is an immutable snapshot of a brand's voice at a point in
// time. Corrections happen by generating a new version, never in place.
type VoiceProfile struct {
	ID                uuid.UUID `json:"id"`
	BrandID           uuid.UUID `json:"brand_id"`
	Version           int       `json:"version"`
	Metrics           Metrics   `json:"metrics"`
	TargetDemographic string    `json:"target_demographic"`
	StyleGuide        []string  `json:"style_guide"`
	WritingExample    string    `json:"writing_example"`
	LLMModel          string    `json:"llm_model"`
	Source            Source    `json:"source"`
	InputFingerprint  string    `json:"input_fingerprint"`
	CreatedAt         time.Time `json:"created_at"`
}

// Validate checks the structural invariants of a profile before it is
// persisted.
func (p *VoiceProfile) Validate() error {
	if p.BrandID == uuid.Nil {
		return &ValidationError{Field: "brand_id", Message: "brand id is required"}
	}
	if p.Version < 1 {
		return &ValidationError{Field: "version", Message: fmt.Sprintf("version must be positive, got %d", p.Version)}
	}
	if err := p.Metrics.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(p.TargetDemographic) == "" {
		return &ValidationError{Field: "target_demographic", Message: "target demographic is required"}
	}
	if len(p.StyleGuide) == 0 {
		return &ValidationError{Field: "style_guide", Message: "at least one style guide entry is required"}
	}
	for i, entry := range p.StyleGuide {
		if strings.TrimSpace(entry) == "" {
			return &ValidationError{Field: "style_guide", Message: fmt.Sprintf("style guide entry %d is empty", i)}
		}
	}
	if strings.TrimSpace(p.WritingExample) == "" {
		return &ValidationError{Field: "writing_example", Message: "writing example is required"}
	}
	if p.LLMModel == "" {
		return &ValidationError{Field: "llm_model", Message: "llm model is required"}
	}
	if !p.Source.Valid() {
		return &ValidationError{Field: "source", Message: fmt.Sprintf("unknown source %q", p.Source)}
	}
	if p.InputFingerprint == "" {
		return &ValidationError{Field: "input_fingerprint", Message: "input fingerprint is required"}
	}
	return nil
}

// VoiceEvaluation is an immutable record of one evaluation run against a
// stored profile. ProfileID is nullable in the schema for future ad-hoc
// evaluation but is always set by the engine today.
type VoiceEvaluation struct {
	ID          uuid.UUID  `json:"id"`
	BrandID     uuid.UUID  `json:"brand_id"`
	ProfileID   *uuid.UUID `json:"voice_profile_id,omitempty"`
	InputText   string     `json:"input_text"`
	Scores      Metrics    `json:"scores"`
	Suggestions []string   `json:"suggestions"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Validate checks the structural invariants of an evaluation before it is
// persisted.
func (e *VoiceEvaluation) Validate() error {
	if e.BrandID == uuid.Nil {
		return &ValidationError{Field: "brand_id", Message: "brand id is required"}
	}
	if strings.TrimSpace(e.InputText) == "" {
		return &ValidationError{Field: "input_text", Message: "input text is required"}
	}
	return e.Scores.Validate()
}

// GenerateInputs carries the caller-supplied material for one profile
// generation: page URLs to fetch and/or manual writing samples.
type GenerateInputs struct {
	URLs           []string `json:"urls"`
	WritingSamples []string `json:"writing_samples"`
}

// Empty reports whether no URLs and no samples were provided.
func (in GenerateInputs) Empty() bool {
	return len(in.URLs) == 0 && len(in.WritingSamples) == 0
}

// SourceKind derives the profile source from which input kinds are present.
func (in GenerateInputs) SourceKind() Source {
	switch {
	case len(in.URLs) > 0 && len(in.WritingSamples) > 0:
		return SourceMixed
	case len(in.URLs) > 0:
		return SourceSite
	default:
		return SourceManual
	}
}
