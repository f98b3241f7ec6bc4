package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kozaktomas/facegroup/internal/domain"
)

// FileRepository implements store.FileWriter on PostgreSQL. The core only
// ever writes FaceGroupMapping/FaceGroupsProcessedAt here; URL,
// ExtractedFaces, and DeletedFaces are populated by the external uploader
// this table is shared with.
type FileRepository struct {
	pool *pgxpool.Pool
}

// NewFileRepository creates a new file repository.
func NewFileRepository(pool *pgxpool.Pool) *FileRepository {
	return &FileRepository{pool: pool}
}

// GetFile implements store.FileReader.
func (r *FileRepository) GetFile(ctx context.Context, userID, fileID string) (*domain.File, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, file_id, url, extracted_faces, deleted_faces, face_group_mapping, face_groups_processed_at
		FROM files WHERE user_id = $1 AND file_id = $2
	`, userID, fileID)

	var f domain.File
	var extractedRaw, deletedRaw, mappingRaw []byte
	var processedAt *time.Time
	if err := row.Scan(&f.UserID, &f.FileID, &f.URL, &extractedRaw, &deletedRaw, &mappingRaw, &processedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	if err := json.Unmarshal(extractedRaw, &f.ExtractedFaces); err != nil {
		return nil, fmt.Errorf("get file: decode extracted faces: %w", err)
	}
	if err := json.Unmarshal(deletedRaw, &f.DeletedFaces); err != nil {
		return nil, fmt.Errorf("get file: decode deleted faces: %w", err)
	}
	if err := json.Unmarshal(mappingRaw, &f.FaceGroupMapping); err != nil {
		return nil, fmt.Errorf("get file: decode mapping: %w", err)
	}
	if processedAt != nil {
		f.FaceGroupsProcessedAt = *processedAt
	}
	return &f, nil
}

// UpdateFileMapping implements store.FileWriter with a JSONB merge: the
// new entries are folded into whatever mapping already exists rather than
// overwriting it, matching the spec's merge-semantic write.
func (r *FileRepository) UpdateFileMapping(ctx context.Context, userID, fileID string, mapping map[string]string, processedAt time.Time) error {
	patch, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("update file mapping: encode patch: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE files
		SET face_group_mapping = face_group_mapping || $3::jsonb,
		    face_groups_processed_at = $4
		WHERE user_id = $1 AND file_id = $2
	`, userID, fileID, patch, processedAt)
	if err != nil {
		return fmt.Errorf("update file mapping: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update file mapping: %w: file %s", domain.ErrNotFound, fileID)
	}
	return nil
}
