package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Store composes the three PostgreSQL repositories into store.Store.
type Store struct {
	*GroupRepository
	*FaceRepository
	*FileRepository
}

// New wires a Store from a single connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		GroupRepository: NewGroupRepository(pool),
		FaceRepository:  NewFaceRepository(pool),
		FileRepository:  NewFileRepository(pool),
	}
}
