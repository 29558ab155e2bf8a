package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/yogkalp/internal/pose"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Pose represents a reference pose stored in the database.
type Pose struct {
	ID        string
	Name      string
	Features  pose.Vector
	Samples   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PoseRepository provides CRUD operations for reference poses.
// It also satisfies pose.Store and pose.SampleRecorder so a pose.Library can
// persist straight into the database.
type PoseRepository struct {
	db *sql.DB
}

// Poses returns the pose repository for this store.
func (s *Store) Poses() *PoseRepository {
	return &PoseRepository{db: s.db}
}

// Upsert inserts a pose or replaces the features of the existing pose with the
// same name. Unavailable features are not stored.
func (r *PoseRepository) Upsert(ctx context.Context, name string, features pose.Vector) (*Pose, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := upsertPose(ctx, tx, name, features)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByName retrieves a pose and its features by name.
func (r *PoseRepository) GetByName(ctx context.Context, name string) (*Pose, error) {
	p := &Pose{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, samples, created_at, updated_at
		 FROM poses WHERE name = ?`,
		name,
	).Scan(&p.ID, &p.Name, &p.Samples, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	features, err := r.features(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Features = features
	return p, nil
}

// List retrieves all poses ordered by name.
func (r *PoseRepository) List(ctx context.Context) ([]*Pose, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, samples, created_at, updated_at
		 FROM poses ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}

	var poses []*Pose
	byID := make(map[string]*Pose)
	for rows.Next() {
		p := &Pose{Features: pose.Vector{}}
		if err := rows.Scan(&p.ID, &p.Name, &p.Samples, &p.CreatedAt, &p.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		poses = append(poses, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = r.db.QueryContext(ctx, `SELECT pose_id, name, kind, value FROM pose_features`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var poseID, name, kind string
		var value float64
		if err := rows.Scan(&poseID, &name, &kind, &value); err != nil {
			return nil, err
		}
		p, ok := byID[poseID]
		if !ok {
			continue
		}
		k, err := pose.ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("pose %q feature %q: %w", p.Name, name, err)
		}
		p.Features[name] = pose.Feature{Kind: k, Value: value}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return poses, nil
}

// ReplaceAll makes the stored poses equal to poses in a single transaction.
// Poses absent from the map are deleted; the rest are upserted, keeping
// their ids and recorded samples.
func (r *PoseRepository) ReplaceAll(ctx context.Context, poses map[string]pose.Vector) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT name FROM poses`)
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		if _, ok := poses[name]; !ok {
			stale = append(stale, name)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, name := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM poses WHERE name = ?`, name); err != nil {
			return fmt.Errorf("delete pose %q: %w", name, err)
		}
	}

	for name, features := range poses {
		if _, err := upsertPose(ctx, tx, name, features); err != nil {
			return fmt.Errorf("save pose %q: %w", name, err)
		}
	}

	return tx.Commit()
}

// Load implements pose.Store.
func (r *PoseRepository) Load(ctx context.Context) (map[string]pose.Vector, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	poses := make(map[string]pose.Vector, len(list))
	for _, p := range list {
		poses[p.Name] = p.Features
	}
	return poses, nil
}

// Save implements pose.Store.
func (r *PoseRepository) Save(ctx context.Context, poses map[string]pose.Vector) error {
	return r.ReplaceAll(ctx, poses)
}

// RecordSamples implements pose.SampleRecorder.
func (r *PoseRepository) RecordSamples(ctx context.Context, name string, samples []pose.Vector) error {
	return (&SampleRepository{db: r.db}).Replace(ctx, name, samples)
}

// ListSamples returns the raw samples recorded for a pose.
func (r *PoseRepository) ListSamples(ctx context.Context, name string) ([]pose.Vector, error) {
	samples, err := (&SampleRepository{db: r.db}).GetByPose(ctx, name)
	if err != nil {
		return nil, err
	}

	out := make([]pose.Vector, len(samples))
	for i, s := range samples {
		out[i] = s.Features
	}
	return out, nil
}

func (r *PoseRepository) features(ctx context.Context, poseID string) (pose.Vector, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, kind, value FROM pose_features WHERE pose_id = ?`,
		poseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	features := pose.Vector{}
	for rows.Next() {
		var name, kind string
		var value float64
		if err := rows.Scan(&name, &kind, &value); err != nil {
			return nil, err
		}
		k, err := pose.ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		features[name] = pose.Feature{Kind: k, Value: value}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return features, nil
}

// upsertPose writes one pose and its features inside tx.
func upsertPose(ctx context.Context, tx *sql.Tx, name string, features pose.Vector) (*Pose, error) {
	now := time.Now()
	p := &Pose{Name: name, Features: features.Clone(), UpdatedAt: now}

	err := tx.QueryRowContext(ctx,
		`SELECT id, samples, created_at FROM poses WHERE name = ?`,
		name,
	).Scan(&p.ID, &p.Samples, &p.CreatedAt)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		p.ID = uuid.NewString()
		p.CreatedAt = now
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO poses (id, name, samples, created_at, updated_at)
			 VALUES (?, ?, 0, ?, ?)`,
			p.ID, p.Name, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE poses SET updated_at = ? WHERE id = ?`,
			p.UpdatedAt, p.ID,
		); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pose_features WHERE pose_id = ?`, p.ID); err != nil {
			return nil, err
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pose_features (pose_id, name, kind, value) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for feature, f := range features {
		if !f.Available() {
			delete(p.Features, feature)
			continue
		}
		if _, err := stmt.ExecContext(ctx, p.ID, feature, f.Kind.String(), f.Value); err != nil {
			return nil, err
		}
	}

	return p, nil
}
