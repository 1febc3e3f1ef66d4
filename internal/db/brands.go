package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/voicelens/voicelens/internal/engine"
	"github.com/voicelens/voicelens/internal/types"
)

// CreateBrand inserts a new brand and returns it with its generated ID.
func (db *DB) CreateBrand(ctx context.Context, name, siteURL string) (*types.Brand, error) {
	var brand types.Brand
	err := db.pool.QueryRow(ctx,
		`INSERT INTO brands (name, site_url)
		 VALUES ($1, $2)
		 RETURNING id, name, site_url, created_at`,
		name, siteURL,
	).Scan(&brand.ID, &brand.Name, &brand.SiteURL, &brand.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	return &brand, nil
}

// GetBrand retrieves a brand by ID.
func (db *DB) GetBrand(ctx context.Context, brandID uuid.UUID) (*types.Brand, error) {
	var brand types.Brand
	err := db.pool.QueryRow(ctx,
		`SELECT id, name, site_url, created_at FROM brands WHERE id = $1`,
		brandID,
	).Scan(&brand.ID, &brand.Name, &brand.SiteURL, &brand.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &engine.NotFoundError{Resource: "brand", BrandID: brandID}
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return &brand, nil
}

// ListBrands retrieves all brands, newest first.
func (db *DB) ListBrands(ctx context.Context) ([]*types.Brand, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, site_url, created_at FROM brands ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := []*types.Brand{}
	for rows.Next() {
		var brand types.Brand
		if err := rows.Scan(&brand.ID, &brand.Name, &brand.SiteURL, &brand.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, &brand)
	}
	return brands, rows.Err()
}

// DeleteBrand removes a brand. Profiles and evaluations cascade.
func (db *DB) DeleteBrand(ctx context.Context, brandID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, brandID)
	if err != nil {
		return fmt.Errorf("failed to delete brand: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &engine.NotFoundError{Resource: "brand", BrandID: brandID}
	}
	return nil
}

