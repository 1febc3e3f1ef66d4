// Package engine orchestrates voice profile generation and evaluation: it
// collects inputs, runs them through the model port, and assigns immutable,
// monotonically versioned profiles under a concurrency-safe idempotency rule.
package engine

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/voicelens/voicelens/internal/fetch"
	"github.com/voicelens/voicelens/internal/llm"
	"github.com/voicelens/voicelens/internal/observability"
	"github.com/voicelens/voicelens/internal/sanitize"
	"github.com/voicelens/voicelens/internal/types"
)

// insertAttempts bounds the read-compute-insert loop for version assignment.
// Conflicts mean another writer took the version; re-reading and retrying is
// cheap, and a lost retry never leaves a gap.
const insertAttempts = 3

// fetchConcurrency caps parallel URL resolution during input collection.
const fetchConcurrency = 4

// Fetcher resolves one URL to page text. Satisfied by HTTPFetcher in
// production and by fakes in tests.
type Fetcher interface {
	PageText(ctx context.Context, url string) (*fetch.Result, error)
}

// HTTPFetcher is the production Fetcher backed by the fetch package.
type HTTPFetcher struct {
	Options *fetch.Options
}

// PageText fetches and extracts one page.
func (f *HTTPFetcher) PageText(ctx context.Context, url string) (*fetch.Result, error) {
	return fetch.PageText(ctx, url, f.Options)
}

// VoiceProfileEngine builds versioned voice profiles for brands.
type VoiceProfileEngine struct {
	port     llm.Port
	profiles ProfileStore
	brands   BrandResolver
	fetcher  Fetcher
	events   *observability.Logger
}

// NewVoiceProfileEngine wires the engine. fetcher and events may be nil;
// a nil fetcher falls back to HTTP with default caps.
func NewVoiceProfileEngine(port llm.Port, profiles ProfileStore, brands BrandResolver, fetcher Fetcher, events *observability.Logger) *VoiceProfileEngine {
	if fetcher == nil {
		fetcher = &HTTPFetcher{}
	}
	return &VoiceProfileEngine{
		port:     port,
		profiles: profiles,
		brands:   brands,
		fetcher:  fetcher,
		events:   events,
	}
}

// Generate produces the brand's next voice profile version, or returns the
// existing latest version unchanged when the input fingerprint matches it.
func (e *VoiceProfileEngine) Generate(ctx context.Context, brandID uuid.UUID, inputs types.GenerateInputs, model string) (*types.VoiceProfile, error) {
	start := time.Now()

	profile, fingerprintHit, err := e.generate(ctx, brandID, inputs, model)

	outcome := "ok"
	version := 0
	if err != nil {
		outcome = "error"
	} else {
		version = profile.Version
	}
	e.events.Generate(brandID.String(), version, fingerprintHit, e.port.Name(), time.Since(start), outcome)

	return profile, err
}

func (e *VoiceProfileEngine) generate(ctx context.Context, brandID uuid.UUID, inputs types.GenerateInputs, model string) (*types.VoiceProfile, bool, error) {
	brand, err := e.brands.GetBrand(ctx, brandID)
	if err != nil {
		return nil, false, err
	}
	if inputs.Empty() {
		return nil, false, &llm.InputError{Message: "at least one URL or writing sample is required"}
	}
	if err := validateURLs(inputs.URLs); err != nil {
		return nil, false, err
	}

	siteText := e.resolveURLs(ctx, inputs.URLs)
	samples := trimmedNonEmpty(inputs.WritingSamples)
	if siteText == "" && len(samples) == 0 {
		return nil, false, &llm.InputError{Message: "no usable input: all URL fetches failed and no writing samples were given"}
	}

	fingerprint := Fingerprint(inputs, model)

	// Idempotency rule: identical inputs and model never produce a
	// duplicate version.
	latest, err := e.profiles.LatestProfile(ctx, brandID)
	if err == nil && latest.InputFingerprint == fingerprint {
		return latest, true, nil
	}
	if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, false, err
		}
	}

	draft, err := e.port.GenerateVoiceProfile(ctx, llm.GenerateRequest{
		BrandName: brand.Name,
		SiteText:  siteText,
		Samples:   samples,
		Model:     model,
		Source:    inputs.SourceKind(),
	})
	if err != nil {
		return nil, false, err
	}

	profile := &types.VoiceProfile{
		ID:                uuid.New(),
		BrandID:           brandID,
		Metrics:           draft.Metrics,
		TargetDemographic: draft.TargetDemographic,
		StyleGuide:        draft.StyleGuide,
		WritingExample:    draft.WritingExample,
		LLMModel:          model,
		Source:            draft.Source,
		InputFingerprint:  fingerprint,
		CreatedAt:         time.Now().UTC(),
	}

	inserted, hit, err := e.insertNextVersion(ctx, profile, fingerprint)
	if err != nil {
		return nil, false, err
	}
	return inserted, hit, nil
}

// insertNextVersion assigns version = max+1 and inserts, retrying on a
// uniqueness conflict. If a concurrent writer landed the same fingerprint
// first, its profile is returned instead of creating a duplicate version.
func (e *VoiceProfileEngine) insertNextVersion(ctx context.Context, profile *types.VoiceProfile, fingerprint string) (*types.VoiceProfile, bool, error) {
	var lastErr error
	for attempt := 0; attempt < insertAttempts; attempt++ {
		maxVersion, err := e.profiles.MaxVersion(ctx, profile.BrandID)
		if err != nil {
			return nil, false, err
		}
		profile.Version = maxVersion + 1

		if err := profile.Validate(); err != nil {
			return nil, false, err
		}

		err = e.profiles.InsertProfile(ctx, profile)
		if err == nil {
			return profile, false, nil
		}

		var conflict *VersionConflictError
		if !errors.As(err, &conflict) {
			return nil, false, err
		}
		lastErr = err

		// Another writer won the version. If it wrote our fingerprint,
		// the idempotency rule applies to its row.
		latest, lerr := e.profiles.LatestProfile(ctx, profile.BrandID)
		if lerr == nil && latest.InputFingerprint == fingerprint {
			return latest, true, nil
		}
	}
	return nil, false, lastErr
}

// Latest returns the brand's newest profile.
func (e *VoiceProfileEngine) Latest(ctx context.Context, brandID uuid.UUID) (*types.VoiceProfile, error) {
	if err := e.checkBrand(ctx, brandID); err != nil {
		return nil, err
	}
	return e.profiles.LatestProfile(ctx, brandID)
}

// ByVersion returns one specific profile version.
func (e *VoiceProfileEngine) ByVersion(ctx context.Context, brandID uuid.UUID, version int) (*types.VoiceProfile, error) {
	if err := e.checkBrand(ctx, brandID); err != nil {
		return nil, err
	}
	return e.profiles.ProfileByVersion(ctx, brandID, version)
}

// List returns all profile versions for a brand, newest first.
func (e *VoiceProfileEngine) List(ctx context.Context, brandID uuid.UUID) ([]*types.VoiceProfile, error) {
	if err := e.checkBrand(ctx, brandID); err != nil {
		return nil, err
	}
	return e.profiles.ListProfiles(ctx, brandID)
}

func (e *VoiceProfileEngine) checkBrand(ctx context.Context, brandID uuid.UUID) error {
	_, err := e.brands.GetBrand(ctx, brandID)
	return err
}

// resolveURLs fetches every URL concurrently, best-effort: failed fetches
// reduce available content but never abort generation. Pages are sanitized
// individually and concatenated in sorted-URL order so the result is stable
// regardless of fetch completion order.
func (e *VoiceProfileEngine) resolveURLs(ctx context.Context, urls []string) string {
	cleaned := trimmedNonEmpty(urls)
	if len(cleaned) == 0 {
		return ""
	}
	sort.Strings(cleaned)

	texts := make([]string, len(cleaned))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for i, u := range cleaned {
		g.Go(func() error {
			result, err := e.fetcher.PageText(gctx, u)
			if err != nil || result.Text == "" {
				// Recoverable: this URL contributes nothing.
				return nil
			}
			texts[i] = sanitize.Text(result.Text, 0)
			return nil
		})
	}
	_ = g.Wait()

	var parts []string
	for _, t := range texts {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

func validateURLs(urls []string) error {
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		parsed, err := url.Parse(raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return &llm.InputError{Message: "malformed URL: " + raw}
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return &llm.InputError{Message: "unsupported URL scheme: " + raw}
		}
	}
	return nil
}

func trimmedNonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
