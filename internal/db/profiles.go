package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/voicelens/voicelens/internal/engine"
	"github.com/voicelens/voicelens/internal/types"
)

const uniqueViolation = "23505"

const profileColumns = `id, brand_id, version, metrics, target_demographic,
	style_guide, writing_example, llm_model, source, input_fingerprint, created_at`

// InsertProfile stores a new profile row. A collision on (brand_id, version)
// is reported as engine.VersionConflictError so the caller can retry with a
// fresh version.
func (db *DB) InsertProfile(ctx context.Context, profile *types.VoiceProfile) error {
	metrics, err := json.Marshal(profile.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	styleGuide, err := json.Marshal(profile.StyleGuide)
	if err != nil {
		return fmt.Errorf("failed to marshal style guide: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO voice_profiles (id, brand_id, version, metrics, target_demographic,
		 style_guide, writing_example, llm_model, source, input_fingerprint, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		profile.ID, profile.BrandID, profile.Version, metrics, profile.TargetDemographic,
		styleGuide, profile.WritingExample, profile.LLMModel, profile.Source,
		profile.InputFingerprint, profile.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &engine.VersionConflictError{BrandID: profile.BrandID, Version: profile.Version}
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// LatestProfile retrieves the brand's highest numbered profile.
func (db *DB) LatestProfile(ctx context.Context, brandID uuid.UUID) (*types.VoiceProfile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+`
		 FROM voice_profiles WHERE brand_id = $1
		 ORDER BY version DESC LIMIT 1`,
		brandID,
	)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &engine.NotFoundError{Resource: "voice profile", BrandID: brandID}
		}
		return nil, fmt.Errorf("failed to get latest profile: %w", err)
	}
	return profile, nil
}

// ProfileByVersion retrieves one specific profile version.
func (db *DB) ProfileByVersion(ctx context.Context, brandID uuid.UUID, version int) (*types.VoiceProfile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+profileColumns+`
		 FROM voice_profiles WHERE brand_id = $1 AND version = $2`,
		brandID, version,
	)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &engine.NotFoundError{Resource: "voice profile", BrandID: brandID, Version: version}
		}
		return nil, fmt.Errorf("failed to get profile version %d: %w", version, err)
	}
	return profile, nil
}

// ListProfiles retrieves all profile versions for a brand, newest first.
func (db *DB) ListProfiles(ctx context.Context, brandID uuid.UUID) ([]*types.VoiceProfile, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+profileColumns+`
		 FROM voice_profiles WHERE brand_id = $1
		 ORDER BY version DESC`,
		brandID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*types.VoiceProfile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// MaxVersion returns the highest assigned version for a brand, 0 when the
// brand has no profiles yet.
func (db *DB) MaxVersion(ctx context.Context, brandID uuid.UUID) (int, error) {
	var maxVersion int
	err := db.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM voice_profiles WHERE brand_id = $1`,
		brandID,
	).Scan(&maxVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to get max version: %w", err)
	}
	return maxVersion, nil
}

func scanProfile(row pgx.Row) (*types.VoiceProfile, error) {
	var (
		profile    types.VoiceProfile
		metrics    []byte
		styleGuide []byte
	)
	err := row.Scan(&profile.ID, &profile.BrandID, &profile.Version, &metrics,
		&profile.TargetDemographic, &styleGuide, &profile.WritingExample,
		&profile.LLMModel, &profile.Source, &profile.InputFingerprint, &profile.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metrics, &profile.Metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	if err := json.Unmarshal(styleGuide, &profile.StyleGuide); err != nil {
		return nil, fmt.Errorf("failed to unmarshal style guide: %w", err)
	}
	return &profile, nil
}
