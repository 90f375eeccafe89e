package repository

import (
	"encoding/json"
	"time"

	"model-pipeline/core/models"

	"github.com/google/uuid"
)

// InvocationRepository handles database operations for stage invocations
type InvocationRepository struct {
	db *DB
}

// NewInvocationRepository creates a new invocation repository
func NewInvocationRepository(db *DB) *InvocationRepository {
	return &InvocationRepository{db: db}
}

// Record stores one stage invocation
func (r *InvocationRepository) Record(inv *models.StageInvocation) error {
	query := `
		INSERT INTO stage_invocations (
			id, stage, operation, job_name, debug, outcome, error,
			duration_ms, meta_json, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	id := uuid.New()
	if inv.ID != "" {
		var err error
		id, err = uuid.Parse(inv.ID)
		if err != nil {
			return err
		}
	}

	createdAt := inv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	metaJSON := "{}"
	if inv.Meta != nil {
		raw, err := json.Marshal(inv.Meta)
		if err != nil {
			return err
		}
		metaJSON = string(raw)
	}

	_, err := r.db.Exec(query,
		id,
		inv.Stage,
		inv.Operation,
		inv.JobName,
		inv.Debug,
		inv.Outcome,
		inv.Error,
		inv.DurationMS,
		metaJSON,
		createdAt,
	)
	if err != nil {
		return err
	}

	inv.ID = id.String()
	inv.CreatedAt = createdAt
	return nil
}

// ListByStage retrieves the most recent invocations of one stage
func (r *InvocationRepository) ListByStage(stage string, limit int) ([]models.StageInvocation, error) {
	query := `
		SELECT id, stage, operation, job_name, debug, outcome, error,
			duration_ms, meta_json, created_at
		FROM stage_invocations
		WHERE stage = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, stage, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invocations []models.StageInvocation
	for rows.Next() {
		var inv models.StageInvocation
		var metaJSON string

		err := rows.Scan(
			&inv.ID,
			&inv.Stage,
			&inv.Operation,
			&inv.JobName,
			&inv.Debug,
			&inv.Outcome,
			&inv.Error,
			&inv.DurationMS,
			&metaJSON,
			&inv.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if metaJSON != "" && metaJSON != "{}" {
			json.Unmarshal([]byte(metaJSON), &inv.Meta)
		}

		invocations = append(invocations, inv)
	}

	return invocations, rows.Err()
}
