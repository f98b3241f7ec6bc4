package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kozaktomas/facegroup/internal/domain"
)

// GroupRepository implements store.GroupWriter on PostgreSQL.
type GroupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

const groupColumns = `user_id, group_id, interview_id, face_ids, file_ids, face_count,
	leader_face_id, leader_file_id, leader_bbox, status, group_name, person_name,
	merged_from, created_at, updated_at`

func scanGroup(row pgx.Row) (*domain.Group, error) {
	var g domain.Group
	var leaderBBox []float64
	if err := row.Scan(
		&g.UserID, &g.GroupID, &g.InterviewID, &g.FaceIDs, &g.FileIDs, &g.FaceCount,
		&g.LeaderFaceID, &g.LeaderFaceData.FileID, &leaderBBox, &g.Status, &g.GroupName, &g.PersonName,
		&g.MergedFrom, &g.CreatedAt, &g.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(leaderBBox) == 4 {
		g.LeaderFaceData.BoundingBox = domain.BoundingBox{
			Left: leaderBBox[0], Top: leaderBBox[1], Width: leaderBBox[2], Height: leaderBBox[3],
		}
	}
	return &g, nil
}

// GetGroup implements store.GroupReader.
func (r *GroupRepository) GetGroup(ctx context.Context, userID, groupID string) (*domain.Group, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM face_groups WHERE user_id = $1 AND group_id = $2`, userID, groupID)
	g, err := scanGroup(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

// ListGroups implements store.GroupReader.
func (r *GroupRepository) ListGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+groupColumns+` FROM face_groups WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var out []domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("list groups scan: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// maxInClause caps how many face IDs go into a single overlap query
// before the adapter chunks the request, per spec.md §4.1.
const maxInClause = 500

// FindGroupsContainingAny implements store.GroupReader using Postgres
// array overlap (&&), the relational analogue of array-contains-any.
func (r *GroupRepository) FindGroupsContainingAny(ctx context.Context, userID string, faceIDs []string, interviewID string) ([]domain.Group, error) {
	if len(faceIDs) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var out []domain.Group

	for start := 0; start < len(faceIDs); start += maxInClause {
		end := start + maxInClause
		if end > len(faceIDs) {
			end = len(faceIDs)
		}
		chunk := faceIDs[start:end]

		query := `SELECT ` + groupColumns + ` FROM face_groups
			WHERE user_id = $1 AND face_ids && $2::text[]
			AND (interview_id = '' OR $3 = '' OR interview_id = $3)`
		rows, err := r.pool.Query(ctx, query, userID, chunk, interviewID)
		if err != nil {
			return nil, fmt.Errorf("find groups containing any: %w", err)
		}
		for rows.Next() {
			g, err := scanGroup(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("find groups scan: %w", err)
			}
			if _, dup := seen[g.GroupID]; dup {
				continue
			}
			seen[g.GroupID] = struct{}{}
			out = append(out, *g)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// PutGroup implements store.GroupWriter as an upsert.
func (r *GroupRepository) PutGroup(ctx context.Context, userID string, g *domain.Group) error {
	leaderBBox := []float64{
		g.LeaderFaceData.BoundingBox.Left, g.LeaderFaceData.BoundingBox.Top,
		g.LeaderFaceData.BoundingBox.Width, g.LeaderFaceData.BoundingBox.Height,
	}
	if g.LeaderFaceID == "" {
		leaderBBox = []float64{}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO face_groups (`+groupColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, COALESCE($14, NOW()), NOW())
		ON CONFLICT (user_id, group_id) DO UPDATE SET
			interview_id = EXCLUDED.interview_id,
			face_ids = EXCLUDED.face_ids,
			file_ids = EXCLUDED.file_ids,
			face_count = EXCLUDED.face_count,
			leader_face_id = EXCLUDED.leader_face_id,
			leader_file_id = EXCLUDED.leader_file_id,
			leader_bbox = EXCLUDED.leader_bbox,
			status = EXCLUDED.status,
			group_name = EXCLUDED.group_name,
			person_name = EXCLUDED.person_name,
			merged_from = EXCLUDED.merged_from,
			updated_at = NOW()
	`,
		userID, g.GroupID, g.InterviewID, g.FaceIDs, g.FileIDs, len(g.FaceIDs),
		g.LeaderFaceID, g.LeaderFaceData.FileID, leaderBBox, string(g.Status), g.GroupName, g.PersonName,
		g.MergedFrom, nilIfZero(g.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put group: %w", err)
	}
	g.FaceCount = len(g.FaceIDs)
	return nil
}

// DeleteGroup implements store.GroupWriter.
func (r *GroupRepository) DeleteGroup(ctx context.Context, userID, groupID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM face_groups WHERE user_id = $1 AND group_id = $2`, userID, groupID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}
