package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/yogkalp/internal/pose"
)

// Sample represents one raw feature vector recorded for a pose.
type Sample struct {
	ID          int64       `json:"id"`
	PoseID      string      `json:"pose_id"`
	SampleIndex int         `json:"sample_index"`
	Features    pose.Vector `json:"features"`
	CreatedAt   time.Time   `json:"created_at"`
}

// SampleRepository provides CRUD operations for pose samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Replace swaps the recorded samples of a pose for samples in a single
// transaction and updates the sample count on the pose.
// It returns ErrNotFound if no pose has the given name.
func (r *SampleRepository) Replace(ctx context.Context, poseName string, samples []pose.Vector) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var poseID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM poses WHERE name = ?`, poseName).Scan(&poseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pose_samples WHERE pose_id = ?`, poseID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pose_samples (pose_id, sample_index, data) VALUES (?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, sample := range samples {
		data, err := json.Marshal(sample)
		if err != nil {
			return fmt.Errorf("encode sample %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, poseID, i, string(data)); err != nil {
			return err
		}
	}

	// Update sample count on the pose
	_, err = tx.ExecContext(ctx, `UPDATE poses SET samples = ?, updated_at = ? WHERE id = ?`,
		len(samples), time.Now(), poseID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetByPose retrieves all samples for a pose in recording order.
// A pose without samples yields an empty slice; an unknown pose ErrNotFound.
func (r *SampleRepository) GetByPose(ctx context.Context, poseName string) ([]Sample, error) {
	var poseID string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM poses WHERE name = ?`, poseName).Scan(&poseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, pose_id, sample_index, data, created_at
		 FROM pose_samples
		 WHERE pose_id = ?
		 ORDER BY sample_index`,
		poseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := []Sample{}
	for rows.Next() {
		var s Sample
		var data string
		if err := rows.Scan(&s.ID, &s.PoseID, &s.SampleIndex, &data, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &s.Features); err != nil {
			return nil, fmt.Errorf("decode sample %d: %w", s.SampleIndex, err)
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}
