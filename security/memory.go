package security

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryStore keeps claim sets in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	claimSets map[string]ClaimSet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{claimSets: make(map[string]ClaimSet)}
}

func (s *MemoryStore) UpsertClaimSet(ctx context.Context, cs ClaimSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cs = cloneClaimSet(cs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.claimSets[cs.Name] = cs
	return nil
}

func (s *MemoryStore) FindClaimSet(ctx context.Context, name string) (ClaimSet, error) {
	if err := ctx.Err(); err != nil {
		return ClaimSet{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	cs, ok := s.claimSets[name]
	if !ok {
		return ClaimSet{}, ErrNotFound
	}
	return cloneClaimSet(cs), nil
}

func (s *MemoryStore) ListClaimSets(ctx context.Context) ([]ClaimSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]ClaimSet, 0, len(s.claimSets))
	for _, cs := range s.claimSets {
		out = append(out, cloneClaimSet(cs))
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b ClaimSet) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}
