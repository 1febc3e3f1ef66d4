package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicelens/voicelens/internal/llm"
	"github.com/voicelens/voicelens/internal/types"
)

func TestEvaluate_PersistsResult(t *testing.T) {
	store := newMemStore()
	brand := store.addBrand()
	gen := newTestEngine(store, nil)
	eval := NewEvaluationEngine(llm.NewStub(), store, nil)

	profile, err := gen.Generate(context.Background(), brand, types.GenerateInputs{
		WritingSamples: []string{"We build sturdy steel tools for tradespeople."},
	}, "stub")
	require.NoError(t, err)

	result, err := eval.Evaluate(context.Background(), profile, "A completely different marketing blurb!")
	require.NoError(t, err)

	assert.Equal(t, brand, result.BrandID)
	require.NotNil(t, result.ProfileID)
	assert.Equal(t, profile.ID, *result.ProfileID)
	assert.Equal(t, "A completely different marketing blurb!", result.InputText)
	require.NoError(t, result.Scores.Validate())
	assert.NotNil(t, result.Suggestions)
	require.Len(t, store.evals, 1)
}

func TestEvaluate_EmptyText(t *testing.T) {
	store := newMemStore()
	eval := NewEvaluationEngine(llm.NewStub(), store, nil)

	profile := &types.VoiceProfile{BrandID: store.addBrand(), Version: 1}
	_, err := eval.Evaluate(context.Background(), profile, "   ")
	var inputErr *llm.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Empty(t, store.evals)
}

// providerFailPort simulates a live adapter whose retry policy is exhausted.
type providerFailPort struct{}

func (p *providerFailPort) Name() string { return "gemini" }

func (p *providerFailPort) GenerateVoiceProfile(context.Context, llm.GenerateRequest) (*llm.Draft, error) {
	return nil, &llm.ProviderError{Adapter: "gemini", Message: "model call failed", Attempts: 3}
}

func (p *providerFailPort) EvaluateText(context.Context, llm.Voice, string) (*llm.Evaluation, error) {
	return nil, &llm.ProviderError{Adapter: "gemini", Message: "model call failed", Attempts: 3}
}

func TestEvaluate_ProviderErrorSurfacesUnchanged(t *testing.T) {
	store := newMemStore()
	eval := NewEvaluationEngine(&providerFailPort{}, store, nil)

	profile := &types.VoiceProfile{BrandID: store.addBrand(), Version: 1}
	_, err := eval.Evaluate(context.Background(), profile, "some text")

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Attempts)
	assert.Empty(t, store.evals, "nothing persisted on provider failure")
}

func TestGenerate_ProviderErrorSurfacesUnchanged(t *testing.T) {
	store := newMemStore()
	brand := store.addBrand()
	eng := NewVoiceProfileEngine(&providerFailPort{}, store, store, &fakeFetcher{}, nil)

	_, err := eng.Generate(context.Background(), brand, types.GenerateInputs{WritingSamples: []string{"x"}}, "gemini-2.5-flash")
	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Zero(t, store.profileCount(brand))
}

// TestAcmeEndToEnd walks the whole lifecycle: generate, idempotent repeat,
// new version on changed input, then evaluate against the new version.
func TestAcmeEndToEnd(t *testing.T) {
	store := newMemStore()
	acme := store.addBrand()
	gen := newTestEngine(store, nil)
	evalEng := NewEvaluationEngine(llm.NewStub(), store, nil)
	ctx := context.Background()

	sample := "We build sturdy steel tools for tradespeople."

	v1, err := gen.Generate(ctx, acme, types.GenerateInputs{WritingSamples: []string{sample}}, "stub")
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)
	assert.Equal(t, types.SourceManual, v1.Source)

	again, err := gen.Generate(ctx, acme, types.GenerateInputs{WritingSamples: []string{sample}}, "stub")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Version, "identical inputs reuse version 1")

	v2, err := gen.Generate(ctx, acme, types.GenerateInputs{WritingSamples: []string{sample, "Extra line."}}, "stub")
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)

	// Evaluating the original sample against v2 should sit closer to the
	// profile than an opposite-style text does.
	matching, err := evalEng.Evaluate(ctx, v2, sample)
	require.NoError(t, err)
	opposite, err := evalEng.Evaluate(ctx, v2, "OMG!!! sparkle vibes only, bestie!!! so random lol")
	require.NoError(t, err)

	require.NoError(t, matching.Scores.Validate())
	require.NoError(t, opposite.Scores.Validate())
	assert.Len(t, store.evals, 2)
}
