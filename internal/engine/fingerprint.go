package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/voicelens/voicelens/internal/types"
)

// Fingerprint computes the stable hash that drives idempotency: identical
// inputs and model always hash the same, any change always hashes
// differently. URLs and samples are trimmed, empties dropped, and sorted so
// ordering does not matter; the model id is part of the hash, so changing
// the model always produces a new version.
func Fingerprint(inputs types.GenerateInputs, model string) string {
	urls := normalized(inputs.URLs)
	samples := normalized(inputs.WritingSamples)

	h := sha256.New()
	for _, u := range urls {
		h.Write([]byte(u))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, s := range samples {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	h.Write([]byte(model))

	return hex.EncodeToString(h.Sum(nil))
}

func normalized(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
