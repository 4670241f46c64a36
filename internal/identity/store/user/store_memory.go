package user

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mongoidentity/internal/identity/models"
	"mongoidentity/pkg/platform/sentinel"
)

// MemoryStore keeps user documents in a map guarded by an RWMutex. It
// mirrors the Mongo store's contract exactly (real ObjectID hexes, deep
// copies on the way in and out) so service and handler tests run without
// a container. Clarity over performance.
type MemoryStore struct {
	aggregateOps
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewMemory constructs an empty in-memory user store.
func NewMemory() *MemoryStore {
	return &MemoryStore{users: make(map[string]*models.User)}
}

func (s *MemoryStore) Create(_ context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := primitive.NewObjectID().Hex()
	if _, exists := s.users[id]; exists {
		return fmt.Errorf("insert user: %w", sentinel.ErrConflict)
	}
	doc := u.Clone()
	doc.ID = id
	s.users[id] = doc
	u.ID = id
	return nil
}

func (s *MemoryStore) Update(_ context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; !exists {
		return fmt.Errorf("replace user %s: %w", u.ID, sentinel.ErrNotFound)
	}
	s.users[u.ID] = u.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("%w: user is required", sentinel.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, u.ID)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*models.User, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[id]; ok {
		return u.Clone(), nil
	}
	return nil, nil
}

func (s *MemoryStore) FindByNormalizedUsername(_ context.Context, normalized string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.NormalizedUserName == normalized {
			return u.Clone(), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindByNormalizedEmail(_ context.Context, normalized string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.NormalizedEmail == normalized {
			return u.Clone(), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindByLogin(_ context.Context, provider, providerKey string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.HasLogin(provider, providerKey) {
			return u.Clone(), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindUsersByClaim(_ context.Context, claim models.Claim) ([]*models.User, error) {
	if claim.IsZero() {
		return nil, fmt.Errorf("%w: claim is required", sentinel.ErrInvalidArgument)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []*models.User
	for _, u := range s.users {
		if u.HasClaim(claim) {
			matches = append(matches, u.Clone())
		}
	}
	return matches, nil
}
