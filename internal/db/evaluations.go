package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/voicelens/voicelens/internal/engine"
	"github.com/voicelens/voicelens/internal/types"
)

// InsertEvaluation stores an evaluation result.
func (db *DB) InsertEvaluation(ctx context.Context, eval *types.VoiceEvaluation) error {
	scores, err := json.Marshal(eval.Scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}
	suggestions, err := json.Marshal(eval.Suggestions)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO voice_evaluations (id, brand_id, profile_id, input_text, scores, suggestions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		eval.ID, eval.BrandID, eval.ProfileID, eval.InputText, scores, suggestions, eval.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert evaluation: %w", err)
	}
	return nil
}

// GetEvaluation retrieves one evaluation by ID.
func (db *DB) GetEvaluation(ctx context.Context, evalID uuid.UUID) (*types.VoiceEvaluation, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, brand_id, profile_id, input_text, scores, suggestions, created_at
		 FROM voice_evaluations WHERE id = $1`,
		evalID,
	)
	eval, err := scanEvaluation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &engine.NotFoundError{Resource: "evaluation"}
		}
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return eval, nil
}

// ListEvaluations retrieves a brand's evaluations, newest first.
func (db *DB) ListEvaluations(ctx context.Context, brandID uuid.UUID, limit int) ([]*types.VoiceEvaluation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, brand_id, profile_id, input_text, scores, suggestions, created_at
		 FROM voice_evaluations WHERE brand_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		brandID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	evals := []*types.VoiceEvaluation{}
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evals = append(evals, eval)
	}
	return evals, rows.Err()
}

func scanEvaluation(row pgx.Row) (*types.VoiceEvaluation, error) {
	var (
		eval        types.VoiceEvaluation
		scores      []byte
		suggestions []byte
	)
	err := row.Scan(&eval.ID, &eval.BrandID, &eval.ProfileID, &eval.InputText,
		&scores, &suggestions, &eval.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(scores, &eval.Scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scores: %w", err)
	}
	if err := json.Unmarshal(suggestions, &eval.Suggestions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suggestions: %w", err)
	}
	return &eval, nil
}
