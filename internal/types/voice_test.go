package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMetrics() Metrics {
	return Metrics{
		MetricWarmth:       0.5,
		MetricSeriousness:  0.5,
		MetricTechnicality: 0.5,
		MetricFormality:    0.5,
		MetricPlayfulness:  0.5,
	}
}

func TestMetrics_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(Metrics)
		wantErr string
	}{
		{"valid", func(Metrics) {}, ""},
		{"missing key", func(m Metrics) { delete(m, MetricWarmth) }, "expected exactly 5 metrics"},
		{"extra key", func(m Metrics) { m["sarcasm"] = 0.2 }, "expected exactly 5 metrics"},
		{"wrong key", func(m Metrics) { delete(m, MetricWarmth); m["sarcasm"] = 0.2 }, "missing metric"},
		{"below range", func(m Metrics) { m[MetricFormality] = -0.1 }, "out of range"},
		{"above range", func(m Metrics) { m[MetricFormality] = 1.1 }, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMetrics()
			tt.mutate(m)
			err := m.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestMetrics_BoundaryValues(t *testing.T) {
	m := validMetrics()
	m[MetricWarmth] = 0
	m[MetricPlayfulness] = 1
	assert.NoError(t, m.Validate())
}

func TestVoiceProfile_Validate(t *testing.T) {
	valid := func() *VoiceProfile {
		return &VoiceProfile{
			ID:                uuid.New(),
			BrandID:           uuid.New(),
			Version:           1,
			Metrics:           validMetrics(),
			TargetDemographic: "small trades businesses",
			StyleGuide:        []string{"Keep sentences short."},
			WritingExample:    "We build tools. They last. You can rely on them.",
			LLMModel:          "stub",
			Source:            SourceManual,
			InputFingerprint:  "abc123",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*VoiceProfile)
		wantErr string
	}{
		{"valid", func(*VoiceProfile) {}, ""},
		{"nil brand", func(p *VoiceProfile) { p.BrandID = uuid.Nil }, "brand id"},
		{"zero version", func(p *VoiceProfile) { p.Version = 0 }, "version"},
		{"empty demographic", func(p *VoiceProfile) { p.TargetDemographic = "  " }, "target demographic"},
		{"empty style guide", func(p *VoiceProfile) { p.StyleGuide = nil }, "style guide"},
		{"blank style entry", func(p *VoiceProfile) { p.StyleGuide = []string{"ok", " "} }, "entry 1 is empty"},
		{"empty example", func(p *VoiceProfile) { p.WritingExample = "" }, "writing example"},
		{"empty model", func(p *VoiceProfile) { p.LLMModel = "" }, "llm model"},
		{"bad source", func(p *VoiceProfile) { p.Source = "webring" }, "unknown source"},
		{"no fingerprint", func(p *VoiceProfile) { p.InputFingerprint = "" }, "fingerprint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVoiceEvaluation_Validate(t *testing.T) {
	ev := &VoiceEvaluation{
		BrandID:   uuid.New(),
		InputText: "Some copy to grade.",
		Scores:    validMetrics(),
	}
	assert.NoError(t, ev.Validate())

	ev.InputText = ""
	err := ev.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input text")
}

func TestGenerateInputs_SourceKind(t *testing.T) {
	tests := []struct {
		name   string
		inputs GenerateInputs
		want   Source
	}{
		{"urls only", GenerateInputs{URLs: []string{"https://acme.test"}}, SourceSite},
		{"samples only", GenerateInputs{WritingSamples: []string{"We build tools."}}, SourceManual},
		{"both", GenerateInputs{URLs: []string{"https://acme.test"}, WritingSamples: []string{"x"}}, SourceMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.inputs.SourceKind())
		})
	}
}

func TestGenerateInputs_Empty(t *testing.T) {
	assert.True(t, GenerateInputs{}.Empty())
	assert.False(t, GenerateInputs{WritingSamples: []string{"x"}}.Empty())
}
