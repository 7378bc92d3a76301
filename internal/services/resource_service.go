package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"faultgate/internal/faults"
)

// Resource is a stored document with an optimistic-concurrency version
type Resource struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResourceService is an in-memory resource store. It exists to give the
// fault mapper realistic material: lookups, version conflicts, and
// protected entries all surface as typed faults.
type ResourceService struct {
	mu        sync.RWMutex
	resources map[string]*Resource
	logger    *slog.Logger
}

// NewResourceService creates a store seeded with the given resources
func NewResourceService(logger *slog.Logger, seed map[string]string) *ResourceService {
	resources := make(map[string]*Resource, len(seed))
	for id, body := range seed {
		resources[id] = &Resource{
			ID:        id,
			Body:      body,
			Version:   1,
			UpdatedAt: time.Now().UTC(),
		}
	}

	return &ResourceService{
		resources: resources,
		logger:    logger.With(slog.String("component", "resource_service")),
	}
}

// Get returns the resource with the given id
func (s *ResourceService) Get(ctx context.Context, id string) (*Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.resources[id]
	if !ok {
		return nil, faults.NewNotFound("resource").WithContext("id", id)
	}

	copied := *res
	return &copied, nil
}

// Put creates or replaces a resource. A non-zero expected version that does
// not match the stored one is a conflict.
func (s *ResourceService) Put(ctx context.Context, id, body string, expectedVersion int) (*Resource, error) {
	if err := s.guard(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.resources[id]
	if ok && expectedVersion != 0 && existing.Version != expectedVersion {
		s.logger.WarnContext(ctx, "resource version conflict",
			slog.String("id", id),
			slog.Int("expected", expectedVersion),
			slog.Int("actual", existing.Version))
		return nil, faults.NewConflict("resource version mismatch").
			WithContext("id", id).
			WithContext("actual_version", existing.Version)
	}

	version := 1
	if ok {
		version = existing.Version + 1
	}

	res := &Resource{
		ID:        id,
		Body:      body,
		Version:   version,
		UpdatedAt: time.Now().UTC(),
	}
	s.resources[id] = res

	copied := *res
	return &copied, nil
}

// Delete removes a resource
func (s *ResourceService) Delete(ctx context.Context, id string) error {
	if err := s.guard(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[id]; !ok {
		return faults.NewNotFound("resource").WithContext("id", id)
	}

	delete(s.resources, id)
	return nil
}

// Count returns the number of stored resources
func (s *ResourceService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources)
}

// guard rejects writes to protected entries. Ids with the "system-"
// prefix are read-only.
func (s *ResourceService) guard(id string) error {
	if strings.HasPrefix(id, "system-") {
		return faults.NewForbidden("resource is read-only").WithContext("id", id)
	}
	return nil
}
