package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError indicates an absent brand or profile. The HTTP layer maps it
// to a 404.
type NotFoundError struct {
	Resource string
	BrandID  uuid.UUID
	Version  int
}

func (e *NotFoundError) Error() string {
	if e.Version > 0 {
		return fmt.Sprintf("%s not found for brand %s at version %d", e.Resource, e.BrandID, e.Version)
	}
	return fmt.Sprintf("%s not found for brand %s", e.Resource, e.BrandID)
}

// VersionConflictError indicates an insert lost the race for a version
// number: the unique (brand_id, version) constraint rejected it. Expected to
// be rare and cheap to retry.
type VersionConflictError struct {
	BrandID uuid.UUID
	Version int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version %d already assigned for brand %s", e.Version, e.BrandID)
}
