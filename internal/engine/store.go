package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/voicelens/voicelens/internal/types"
)

// BrandResolver resolves a brand reference, returning *NotFoundError when it
// does not exist. The core never creates or mutates brands.
type BrandResolver interface {
	GetBrand(ctx context.Context, brandID uuid.UUID) (*types.Brand, error)
}

// ProfileStore is the persistence boundary for voice profiles. Inserts must
// enforce a unique (brand_id, version) constraint; a violation surfaces as
// *VersionConflictError so the engine can re-read and retry.
type ProfileStore interface {
	// LatestProfile returns the highest-version profile for a brand, or
	// *NotFoundError when the brand has none.
	LatestProfile(ctx context.Context, brandID uuid.UUID) (*types.VoiceProfile, error)
	// ProfileByVersion returns one specific version, or *NotFoundError.
	ProfileByVersion(ctx context.Context, brandID uuid.UUID, version int) (*types.VoiceProfile, error)
	// ListProfiles returns all versions for a brand, newest first.
	ListProfiles(ctx context.Context, brandID uuid.UUID) ([]*types.VoiceProfile, error)
	// MaxVersion returns the brand's highest assigned version, 0 when none.
	MaxVersion(ctx context.Context, brandID uuid.UUID) (int, error)
	// InsertProfile persists a complete profile atomically.
	InsertProfile(ctx context.Context, profile *types.VoiceProfile) error
}

// EvaluationStore is the persistence boundary for evaluations.
type EvaluationStore interface {
	InsertEvaluation(ctx context.Context, eval *types.VoiceEvaluation) error
}
