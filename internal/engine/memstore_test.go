package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/voicelens/voicelens/internal/types"
)

// memStore is an in-memory persistence boundary for engine tests. It
// enforces the unique (brand_id, version) constraint the way the database
// does, and can inject conflicts to exercise the retry loop.
type memStore struct {
	mu       sync.Mutex
	brands   map[uuid.UUID]*types.Brand
	profiles map[uuid.UUID][]*types.VoiceProfile
	evals    []*types.VoiceEvaluation

	// conflictsBeforeInsert forces the next n inserts to fail with a
	// version conflict before the real insert is attempted.
	conflictsBeforeInsert int
}

func newMemStore() *memStore {
	return &memStore{
		brands:   make(map[uuid.UUID]*types.Brand),
		profiles: make(map[uuid.UUID][]*types.VoiceProfile),
	}
}

func (m *memStore) addBrand() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	brand := &types.Brand{ID: uuid.New(), Name: "Acme Tools"}
	m.brands[brand.ID] = brand
	return brand.ID
}

func (m *memStore) GetBrand(_ context.Context, brandID uuid.UUID) (*types.Brand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	brand, ok := m.brands[brandID]
	if !ok {
		return nil, &NotFoundError{Resource: "brand", BrandID: brandID}
	}
	return brand, nil
}

func (m *memStore) LatestProfile(_ context.Context, brandID uuid.UUID) (*types.VoiceProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *types.VoiceProfile
	for _, p := range m.profiles[brandID] {
		if latest == nil || p.Version > latest.Version {
			latest = p
		}
	}
	if latest == nil {
		return nil, &NotFoundError{Resource: "voice profile", BrandID: brandID}
	}
	return latest, nil
}

func (m *memStore) ProfileByVersion(_ context.Context, brandID uuid.UUID, version int) (*types.VoiceProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles[brandID] {
		if p.Version == version {
			return p, nil
		}
	}
	return nil, &NotFoundError{Resource: "voice profile", BrandID: brandID, Version: version}
}

func (m *memStore) ListProfiles(_ context.Context, brandID uuid.UUID) ([]*types.VoiceProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.VoiceProfile, len(m.profiles[brandID]))
	copy(out, m.profiles[brandID])
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (m *memStore) MaxVersion(_ context.Context, brandID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxVersionLocked(brandID), nil
}

func (m *memStore) maxVersionLocked(brandID uuid.UUID) int {
	maxVersion := 0
	for _, p := range m.profiles[brandID] {
		if p.Version > maxVersion {
			maxVersion = p.Version
		}
	}
	return maxVersion
}

func (m *memStore) InsertProfile(_ context.Context, profile *types.VoiceProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conflictsBeforeInsert > 0 {
		m.conflictsBeforeInsert--
		return &VersionConflictError{BrandID: profile.BrandID, Version: profile.Version}
	}

	for _, p := range m.profiles[profile.BrandID] {
		if p.Version == profile.Version {
			return &VersionConflictError{BrandID: profile.BrandID, Version: profile.Version}
		}
	}

	clone := *profile
	m.profiles[profile.BrandID] = append(m.profiles[profile.BrandID], &clone)
	return nil
}

func (m *memStore) InsertEvaluation(_ context.Context, eval *types.VoiceEvaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *eval
	m.evals = append(m.evals, &clone)
	return nil
}

func (m *memStore) profileCount(brandID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.profiles[brandID])
}

func (m *memStore) versions(brandID uuid.UUID) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, p := range m.profiles[brandID] {
		out = append(out, p.Version)
	}
	sort.Ints(out)
	return out
}
