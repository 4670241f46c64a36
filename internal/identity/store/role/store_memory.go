package role

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mongoidentity/internal/identity/models"
	"mongoidentity/pkg/platform/sentinel"
)

// MemoryStore is the container-free role store used by tests and local
// wiring.
type MemoryStore struct {
	mu    sync.RWMutex
	roles map[string]models.Role
}

// NewMemory constructs an empty in-memory role store.
func NewMemory() *MemoryStore {
	return &MemoryStore{roles: make(map[string]models.Role)}
}

func (s *MemoryStore) Create(_ context.Context, r *models.Role) error {
	if r == nil {
		return fmt.Errorf("%w: role is required", sentinel.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := primitive.NewObjectID().Hex()
	if _, exists := s.roles[id]; exists {
		return fmt.Errorf("insert role: %w", sentinel.ErrConflict)
	}
	doc := *r
	doc.ID = id
	s.roles[id] = doc
	r.ID = id
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.Role, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.roles[id]; ok {
		out := r
		return &out, nil
	}
	return nil, nil
}

func (s *MemoryStore) FindByNormalizedName(_ context.Context, normalized string) (*models.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.roles {
		if r.NormalizedName == normalized {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Delete(_ context.Context, r *models.Role) error {
	if r == nil {
		return fmt.Errorf("%w: role is required", sentinel.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.roles, r.ID)
	return nil
}
