package llm

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicelens/voicelens/internal/types"
)

func TestStub_GenerateVoiceProfile_Deterministic(t *testing.T) {
	stub := NewStub()
	req := GenerateRequest{
		BrandName: "Acme",
		SiteText:  "We build sturdy steel tools for tradespeople.",
		Samples:   []string{"Built to last.", "No shortcuts."},
		Model:     "stub",
	}

	first, err := stub.GenerateVoiceProfile(context.Background(), req)
	require.NoError(t, err)
	second, err := stub.GenerateVoiceProfile(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Metrics, second.Metrics)
	assert.Equal(t, first.TargetDemographic, second.TargetDemographic)
	assert.Equal(t, first.StyleGuide, second.StyleGuide)
	assert.Equal(t, first.WritingExample, second.WritingExample)
}

func TestStub_GenerateVoiceProfile_SampleOrderIrrelevant(t *testing.T) {
	stub := NewStub()
	a, err := stub.GenerateVoiceProfile(context.Background(), GenerateRequest{
		Samples: []string{"First sample.", "Second sample."}, Model: "stub",
	})
	require.NoError(t, err)
	b, err := stub.GenerateVoiceProfile(context.Background(), GenerateRequest{
		Samples: []string{"Second sample.", "First sample."}, Model: "stub",
	})
	require.NoError(t, err)
	assert.Equal(t, a.Metrics, b.Metrics)
}

func TestStub_GenerateVoiceProfile_InputSensitivity(t *testing.T) {
	stub := NewStub()
	base := GenerateRequest{Samples: []string{"We build sturdy steel tools."}, Model: "stub"}

	baseline, err := stub.GenerateVoiceProfile(context.Background(), base)
	require.NoError(t, err)

	changedSample := base
	changedSample.Samples = []string{"We build sturdy steel tools!"}
	altered, err := stub.GenerateVoiceProfile(context.Background(), changedSample)
	require.NoError(t, err)
	assert.NotEqual(t, baseline.Metrics, altered.Metrics)

	changedModel := base
	changedModel.Model = "stub-v2"
	altered, err = stub.GenerateVoiceProfile(context.Background(), changedModel)
	require.NoError(t, err)
	assert.NotEqual(t, baseline.Metrics, altered.Metrics)
}

func TestStub_GenerateVoiceProfile_MetricDomain(t *testing.T) {
	stub := NewStub()
	draft, err := stub.GenerateVoiceProfile(context.Background(), GenerateRequest{
		SiteText: "Anything at all.", Model: "stub",
	})
	require.NoError(t, err)

	require.NoError(t, draft.Metrics.Validate())
	assert.Len(t, draft.Metrics, 5)
	for _, key := range types.MetricKeys() {
		v := draft.Metrics[key]
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestStub_GenerateVoiceProfile_LegibleOutput(t *testing.T) {
	stub := NewStub()
	draft, err := stub.GenerateVoiceProfile(context.Background(), GenerateRequest{
		Samples: []string{"We build sturdy steel tools for tradespeople."}, Model: "stub",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, draft.TargetDemographic)
	require.NotEmpty(t, draft.StyleGuide)
	// The first bullet names the dominant metric.
	assert.Contains(t, draft.StyleGuide[0], dominantMetric(draft.Metrics))
	assert.NotEmpty(t, draft.WritingExample)
	assert.Equal(t, types.SourceManual, draft.Source)
}

func TestStub_GenerateVoiceProfile_EmptyInputs(t *testing.T) {
	stub := NewStub()
	_, err := stub.GenerateVoiceProfile(context.Background(), GenerateRequest{
		SiteText: "   ", Samples: []string{"", "  "}, Model: "stub",
	})
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestStub_EvaluateText_Deterministic(t *testing.T) {
	stub := NewStub()
	voice := Voice{Metrics: flatMetrics(0.5)}

	first, err := stub.EvaluateText(context.Background(), voice, "Check this copy.")
	require.NoError(t, err)
	second, err := stub.EvaluateText(context.Background(), voice, "Check this copy.")
	require.NoError(t, err)

	assert.Equal(t, first.Scores, second.Scores)
	assert.Equal(t, first.Suggestions, second.Suggestions)
	require.NoError(t, first.Scores.Validate())
}

func TestStub_EvaluateText_Empty(t *testing.T) {
	stub := NewStub()
	_, err := stub.EvaluateText(context.Background(), Voice{Metrics: flatMetrics(0.5)}, "  \n ")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
}

func TestStub_EvaluateText_SuggestionCorrespondence(t *testing.T) {
	stub := NewStub()
	text := "We build sturdy steel tools for tradespeople."

	// Scores depend only on the text; pin the voice metrics around them so
	// the threshold rule is exercised in both directions.
	probe, err := stub.EvaluateText(context.Background(), Voice{Metrics: flatMetrics(0.5)}, text)
	require.NoError(t, err)

	voice := Voice{Metrics: make(types.Metrics, 5)}
	for _, key := range types.MetricKeys() {
		voice.Metrics[key] = probe.Scores[key]
	}
	// Exactly at the score: no suggestions at all.
	eval, err := stub.EvaluateText(context.Background(), voice, text)
	require.NoError(t, err)
	assert.Empty(t, eval.Suggestions)

	// Push two metrics past the threshold, leave the rest inside it.
	voice.Metrics[types.MetricWarmth] = clamp01(probe.Scores[types.MetricWarmth] - 0.4)
	voice.Metrics[types.MetricFormality] = clamp01(probe.Scores[types.MetricFormality] + 0.2)
	voice.Metrics[types.MetricPlayfulness] = clamp01(probe.Scores[types.MetricPlayfulness] + 0.1)

	eval, err = stub.EvaluateText(context.Background(), voice, text)
	require.NoError(t, err)

	for _, key := range types.MetricKeys() {
		delta := math.Abs(eval.Scores[key] - voice.Metrics[key])
		mentioned := false
		for _, s := range eval.Suggestions {
			if strings.Contains(s, key) {
				mentioned = true
			}
		}
		assert.Equal(t, delta > SuggestionThreshold, mentioned, "metric %s, delta %.3f", key, delta)
	}
}

func TestStub_EvaluateText_SuggestionsSortedByDelta(t *testing.T) {
	stub := NewStub()
	text := "A wildly different, extremely exuberant piece of writing!!!"

	probe, err := stub.EvaluateText(context.Background(), Voice{Metrics: flatMetrics(0.5)}, text)
	require.NoError(t, err)

	voice := Voice{Metrics: make(types.Metrics, 5)}
	deltas := []float64{0.5, 0.3, 0.2, 0.05, 0.01}
	for i, key := range types.MetricKeys() {
		voice.Metrics[key] = clamp01(probe.Scores[key] - deltas[i])
	}

	eval, err := stub.EvaluateText(context.Background(), voice, text)
	require.NoError(t, err)
	require.NotEmpty(t, eval.Suggestions)

	// First suggestion names the metric with the largest divergence.
	var largest string
	var largestDelta float64
	for _, key := range types.MetricKeys() {
		d := math.Abs(eval.Scores[key] - voice.Metrics[key])
		if d > largestDelta {
			largestDelta = d
			largest = key
		}
	}
	assert.Contains(t, eval.Suggestions[0], largest)
}

func TestDominantAndWeakestMetric_TieBreaksByName(t *testing.T) {
	m := flatMetrics(0.5)
	assert.Equal(t, types.MetricFormality, dominantMetric(m))
	assert.Equal(t, types.MetricFormality, weakestMetric(m))

	m[types.MetricWarmth] = 0.9
	m[types.MetricPlayfulness] = 0.1
	assert.Equal(t, types.MetricWarmth, dominantMetric(m))
	assert.Equal(t, types.MetricPlayfulness, weakestMetric(m))
}

func flatMetrics(v float64) types.Metrics {
	m := make(types.Metrics, 5)
	for _, key := range types.MetricKeys() {
		m[key] = v
	}
	return m
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
