package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kozaktomas/facegroup/internal/domain"
)

// FaceRepository implements store.FaceWriter on PostgreSQL.
type FaceRepository struct {
	pool *pgxpool.Pool
}

// NewFaceRepository creates a new face repository.
func NewFaceRepository(pool *pgxpool.Pool) *FaceRepository {
	return &FaceRepository{pool: pool}
}

// GetFace implements store.FaceReader.
func (r *FaceRepository) GetFace(ctx context.Context, userID, faceID string) (*domain.Face, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, face_id, group_id, file_id, bbox_left, bbox_top, bbox_width, bbox_height,
		       has_bbox, confidence, created_at, updated_at
		FROM faces WHERE user_id = $1 AND face_id = $2
	`, userID, faceID)

	var f domain.Face
	if err := row.Scan(
		&f.UserID, &f.FaceID, &f.GroupID, &f.FileID,
		&f.BBox.Left, &f.BBox.Top, &f.BBox.Width, &f.BBox.Height,
		&f.HasBBox, &f.Confidence, &f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get face: %w", err)
	}
	return &f, nil
}

// PutFace implements store.FaceWriter as an upsert.
func (r *FaceRepository) PutFace(ctx context.Context, userID string, f *domain.Face) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO faces (user_id, face_id, group_id, file_id, bbox_left, bbox_top, bbox_width, bbox_height,
			has_bbox, confidence, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, COALESCE($11, NOW()), NOW())
		ON CONFLICT (user_id, face_id) DO UPDATE SET
			group_id = EXCLUDED.group_id,
			file_id = EXCLUDED.file_id,
			bbox_left = EXCLUDED.bbox_left,
			bbox_top = EXCLUDED.bbox_top,
			bbox_width = EXCLUDED.bbox_width,
			bbox_height = EXCLUDED.bbox_height,
			has_bbox = EXCLUDED.has_bbox,
			confidence = EXCLUDED.confidence,
			updated_at = NOW()
	`,
		userID, f.FaceID, f.GroupID, f.FileID, f.BBox.Left, f.BBox.Top, f.BBox.Width, f.BBox.Height,
		f.HasBBox, f.Confidence, nilIfZero(f.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put face: %w", err)
	}
	return nil
}

// DeleteFace implements store.FaceWriter.
func (r *FaceRepository) DeleteFace(ctx context.Context, userID, faceID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM faces WHERE user_id = $1 AND face_id = $2`, userID, faceID); err != nil {
		return fmt.Errorf("delete face: %w", err)
	}
	return nil
}
