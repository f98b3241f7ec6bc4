// Package mock provides an in-memory implementation of store.Store for
// tests, following the teacher's mock package: a map-backed store guarded
// by a mutex with per-method error injection fields.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/facegroup/internal/domain"
)

// Store is an in-memory, single-process implementation of store.Store.
type Store struct {
	mu     sync.RWMutex
	groups map[string]map[string]*domain.Group // userID -> groupID -> group
	faces  map[string]map[string]*domain.Face  // userID -> faceID -> face
	files  map[string]map[string]*domain.File  // userID -> fileID -> file

	// Error injection, checked before every corresponding operation.
	GetGroupErr    error
	PutGroupErr    error
	DeleteGroupErr error
	FindGroupsErr  error
	GetFaceErr     error
	PutFaceErr     error
	DeleteFaceErr  error
	GetFileErr     error
	UpdateFileErr  error
}

// New returns an empty mock store.
func New() *Store {
	return &Store{
		groups: make(map[string]map[string]*domain.Group),
		faces:  make(map[string]map[string]*domain.Face),
		files:  make(map[string]map[string]*domain.File),
	}
}

// SeedFile installs a file doc directly, bypassing the FileWriter contract
// (tests own file docs; the core only ever mutates the mapping fields).
func (s *Store) SeedFile(userID string, file domain.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files[userID] == nil {
		s.files[userID] = make(map[string]*domain.File)
	}
	f := file
	if f.FaceGroupMapping == nil {
		f.FaceGroupMapping = make(map[string]string)
	}
	s.files[userID][file.FileID] = &f
}

func cloneGroup(g *domain.Group) *domain.Group {
	c := *g
	c.FaceIDs = append([]string(nil), g.FaceIDs...)
	c.FileIDs = append([]string(nil), g.FileIDs...)
	c.MergedFrom = append([]string(nil), g.MergedFrom...)
	return &c
}

func cloneFace(f *domain.Face) *domain.Face {
	c := *f
	return &c
}

func cloneFile(f *domain.File) *domain.File {
	c := *f
	c.ExtractedFaces = append([]domain.ExtractedFace(nil), f.ExtractedFaces...)
	c.DeletedFaces = append([]domain.DeletedFace(nil), f.DeletedFaces...)
	mapping := make(map[string]string, len(f.FaceGroupMapping))
	for k, v := range f.FaceGroupMapping {
		mapping[k] = v
	}
	c.FaceGroupMapping = mapping
	return &c
}

// GetGroup implements store.GroupReader.
func (s *Store) GetGroup(ctx context.Context, userID, groupID string) (*domain.Group, error) {
	if s.GetGroupErr != nil {
		return nil, s.GetGroupErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[userID][groupID]
	if !ok {
		return nil, nil
	}
	return cloneGroup(g), nil
}

// ListGroups implements store.GroupReader.
func (s *Store) ListGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]domain.Group, 0, len(s.groups[userID]))
	for _, g := range s.groups[userID] {
		groups = append(groups, *cloneGroup(g))
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].UpdatedAt.After(groups[j].UpdatedAt)
	})
	return groups, nil
}

// FindGroupsContainingAny implements store.GroupReader.
func (s *Store) FindGroupsContainingAny(ctx context.Context, userID string, faceIDs []string, interviewID string) ([]domain.Group, error) {
	if s.FindGroupsErr != nil {
		return nil, s.FindGroupsErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := make(map[string]struct{}, len(faceIDs))
	for _, id := range faceIDs {
		want[id] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []domain.Group
	for _, g := range s.groups[userID] {
		if !g.CompatibleWithScope(interviewID) {
			continue
		}
		for _, id := range g.FaceIDs {
			if _, ok := want[id]; ok {
				if _, dup := seen[g.GroupID]; !dup {
					seen[g.GroupID] = struct{}{}
					out = append(out, *cloneGroup(g))
				}
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].GroupID < out[j].GroupID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// PutGroup implements store.GroupWriter.
func (s *Store) PutGroup(ctx context.Context, userID string, group *domain.Group) error {
	if s.PutGroupErr != nil {
		return s.PutGroupErr
	}
	if group.GroupID == "" {
		return fmt.Errorf("mock: group id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	group.UpdatedAt = now()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = group.UpdatedAt
	}
	if s.groups[userID] == nil {
		s.groups[userID] = make(map[string]*domain.Group)
	}
	s.groups[userID][group.GroupID] = cloneGroup(group)
	return nil
}

// DeleteGroup implements store.GroupWriter.
func (s *Store) DeleteGroup(ctx context.Context, userID, groupID string) error {
	if s.DeleteGroupErr != nil {
		return s.DeleteGroupErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups[userID], groupID)
	return nil
}

// GetFace implements store.FaceReader.
func (s *Store) GetFace(ctx context.Context, userID, faceID string) (*domain.Face, error) {
	if s.GetFaceErr != nil {
		return nil, s.GetFaceErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.faces[userID][faceID]
	if !ok {
		return nil, nil
	}
	return cloneFace(f), nil
}

// PutFace implements store.FaceWriter.
func (s *Store) PutFace(ctx context.Context, userID string, face *domain.Face) error {
	if s.PutFaceErr != nil {
		return s.PutFaceErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	face.UpdatedAt = now()
	if face.CreatedAt.IsZero() {
		face.CreatedAt = face.UpdatedAt
	}
	if s.faces[userID] == nil {
		s.faces[userID] = make(map[string]*domain.Face)
	}
	s.faces[userID][face.FaceID] = cloneFace(face)
	return nil
}

// DeleteFace implements store.FaceWriter.
func (s *Store) DeleteFace(ctx context.Context, userID, faceID string) error {
	if s.DeleteFaceErr != nil {
		return s.DeleteFaceErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.faces[userID], faceID)
	return nil
}

// GetFile implements store.FileReader.
func (s *Store) GetFile(ctx context.Context, userID, fileID string) (*domain.File, error) {
	if s.GetFileErr != nil {
		return nil, s.GetFileErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[userID][fileID]
	if !ok {
		return nil, nil
	}
	return cloneFile(f), nil
}

// UpdateFileMapping implements store.FileWriter.
func (s *Store) UpdateFileMapping(ctx context.Context, userID, fileID string, mapping map[string]string, processedAt time.Time) error {
	if s.UpdateFileErr != nil {
		return s.UpdateFileErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[userID][fileID]
	if !ok {
		return fmt.Errorf("mock: file %s not found", fileID)
	}
	if f.FaceGroupMapping == nil {
		f.FaceGroupMapping = make(map[string]string)
	}
	for k, v := range mapping {
		f.FaceGroupMapping[k] = v
	}
	f.FaceGroupsProcessedAt = processedAt
	return nil
}

// now is overridable in tests that need deterministic timestamps.
var now = time.Now
