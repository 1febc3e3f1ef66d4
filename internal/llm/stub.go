package llm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/voicelens/voicelens/internal/types"
)

// SuggestionThreshold is the absolute score delta above which the stub
// emits a suggestion for a metric.
const SuggestionThreshold = 0.15

// Stub is the deterministic, network-free Port implementation. Identical
// inputs produce bit-identical output on every run and platform, which makes
// the whole pipeline testable offline.
type Stub struct{}

// NewStub returns the stub adapter.
func NewStub() *Stub {
	return &Stub{}
}

// Name identifies the adapter.
func (s *Stub) Name() string { return "stub" }

// GenerateVoiceProfile derives a legible, stable draft from a digest of the
// normalized inputs. Metrics are pseudo-random floats seeded by the digest;
// the textual fields come from fixed templates parameterized by the digest
// and the rounded metrics.
func (s *Stub) GenerateVoiceProfile(_ context.Context, req GenerateRequest) (*Draft, error) {
	samples := nonEmptyTrimmed(req.Samples)
	site := strings.TrimSpace(req.SiteText)
	if site == "" && len(samples) == 0 {
		return nil, &InputError{Message: "no site text and no writing samples to profile"}
	}

	digest := contentDigest(site, samples, req.Model)
	metrics := metricsFromDigest(digest)

	source := req.Source
	if !source.Valid() {
		if site != "" && len(samples) > 0 {
			source = types.SourceMixed
		} else if site != "" {
			source = types.SourceSite
		} else {
			source = types.SourceManual
		}
	}

	top := dominantMetric(metrics)
	low := weakestMetric(metrics)

	return &Draft{
		Metrics:           metrics,
		TargetDemographic: demographicFor(digest, top),
		StyleGuide:        styleGuideFor(metrics, top, low),
		WritingExample:    writingExampleFor(digest, metrics, top),
		Source:            source,
	}, nil
}

// EvaluateText scores the sample from a digest of its normalized text and
// suggests one adjustment per metric whose score diverges from the voice by
// more than SuggestionThreshold, largest divergence first.
func (s *Stub) EvaluateText(_ context.Context, voice Voice, text string) (*Evaluation, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &InputError{Message: "evaluation text is empty"}
	}

	digest := sha256.Sum256([]byte(trimmed))
	scores := metricsFromDigest(digest[:])

	type divergence struct {
		metric string
		delta  float64
	}
	var diverging []divergence
	for _, key := range types.MetricKeys() {
		delta := scores[key] - voice.Metrics[key]
		if math.Abs(delta) > SuggestionThreshold {
			diverging = append(diverging, divergence{metric: key, delta: delta})
		}
	}
	sort.Slice(diverging, func(i, j int) bool {
		di, dj := math.Abs(diverging[i].delta), math.Abs(diverging[j].delta)
		if di != dj {
			return di > dj
		}
		return diverging[i].metric < diverging[j].metric
	})

	suggestions := make([]string, 0, len(diverging))
	for _, d := range diverging {
		verb := "Dial up"
		if d.delta > 0 {
			verb = "Dial back"
		}
		suggestions = append(suggestions, fmt.Sprintf(
			"%s %s: the sample reads %.2f against a voice target of %.2f.",
			verb, d.metric, scores[d.metric], voice.Metrics[d.metric]))
	}

	return &Evaluation{Scores: scores, Suggestions: suggestions}, nil
}

// contentDigest hashes the normalized inputs: site text, sorted samples and
// the model string, NUL-separated so field boundaries cannot collide.
func contentDigest(siteText string, samples []string, model string) []byte {
	sorted := make([]string, len(samples))
	copy(sorted, samples)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(siteText))
	h.Write([]byte{0})
	for _, sample := range sorted {
		h.Write([]byte(sample))
		h.Write([]byte{0})
	}
	h.Write([]byte(model))
	return h.Sum(nil)
}

// metricsFromDigest derives each metric from an 8-byte slice of a per-metric
// subdigest, mapped into [0,1].
func metricsFromDigest(digest []byte) types.Metrics {
	metrics := make(types.Metrics, 5)
	for _, key := range types.MetricKeys() {
		sub := sha256.Sum256(append(append([]byte{}, digest...), key...))
		v := binary.BigEndian.Uint64(sub[:8])
		metrics[key] = float64(v) / float64(math.MaxUint64)
	}
	return metrics
}

// dominantMetric returns the highest-scoring metric, ties broken by name.
func dominantMetric(m types.Metrics) string {
	best := ""
	for _, key := range types.MetricKeys() {
		if best == "" || m[key] > m[best] {
			best = key
		}
	}
	return best
}

// weakestMetric returns the lowest-scoring metric, ties broken by name.
func weakestMetric(m types.Metrics) string {
	worst := ""
	for _, key := range types.MetricKeys() {
		if worst == "" || m[key] < m[worst] {
			worst = key
		}
	}
	return worst
}

var audiences = []string{
	"independent tradespeople and small workshop owners",
	"growth-stage startup founders and their first hires",
	"technical decision makers at mid-size companies",
	"design-conscious consumers who research before buying",
	"operations leads tired of vendor jargon",
	"early-career professionals building their toolkit",
}

var audienceQualifiers = map[string]string{
	types.MetricWarmth:       "who respond to a personal, welcoming tone",
	types.MetricSeriousness:  "who expect sober, no-nonsense communication",
	types.MetricTechnicality: "who want specifics over slogans",
	types.MetricFormality:    "who read carefully and expect polish",
	types.MetricPlayfulness:  "who appreciate wit when it is earned",
}

func demographicFor(digest []byte, top string) string {
	audience := audiences[int(digest[0])%len(audiences)]
	return fmt.Sprintf("%s %s", audience, audienceQualifiers[top])
}

func styleGuideFor(m types.Metrics, top, low string) []string {
	guide := []string{
		fmt.Sprintf("Lead with %s; at %.2f it is the strongest trait of this voice.", top, m[top]),
		fmt.Sprintf("Keep %s in check; at %.2f it is the voice's quietest register.", low, m[low]),
	}
	if m[types.MetricFormality] >= 0.5 {
		guide = append(guide, "Prefer complete sentences and a professional register.")
	} else {
		guide = append(guide, "Contractions and a conversational register are fine.")
	}
	if m[types.MetricTechnicality] >= 0.5 {
		guide = append(guide, "Name concrete materials, numbers, and processes instead of abstractions.")
	} else {
		guide = append(guide, "Translate technical detail into plain benefits.")
	}
	return guide
}

var exampleOpeners = []string{
	"We make things that hold up.",
	"Good work starts with good tools.",
	"Every detail here earns its place.",
	"You have a job to do, and so do we.",
}

var exampleClosers = []string{
	"That is the standard, every time.",
	"See for yourself.",
	"We would not ship it otherwise.",
	"That is how we have always worked.",
}

func writingExampleFor(digest []byte, m types.Metrics, top string) string {
	opener := exampleOpeners[int(digest[1])%len(exampleOpeners)]
	closer := exampleClosers[int(digest[2])%len(exampleClosers)]

	middle := fmt.Sprintf("Our voice leans on %s, and it shows in every sentence we publish.", top)
	var extra string
	if m[types.MetricTechnicality] >= 0.5 {
		extra = "We will tell you the alloy, the tolerance, and the test results."
	} else {
		extra = "We skip the spec sheet talk and tell you what it means for your day."
	}

	return strings.Join([]string{opener, middle, extra, closer}, " ")
}

func nonEmptyTrimmed(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
