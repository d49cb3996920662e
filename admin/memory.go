package admin

import (
	"context"
	"slices"
	"strings"
	"sync"
)

type appKey struct{ vendor, name string }

type clientKey struct{ vendor, application, name string }

func keyOf(c Client) clientKey { return clientKey{c.Vendor, c.Application, c.Name} }

// MemoryStore keeps admin records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	vendors map[string]Vendor
	apps    map[appKey]Application
	clients map[clientKey]Client
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		vendors: make(map[string]Vendor),
		apps:    make(map[appKey]Application),
		clients: make(map[clientKey]Client),
	}
}

func (s *MemoryStore) UpsertVendor(ctx context.Context, v Vendor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.NamespacePrefixes = slices.Clone(v.NamespacePrefixes)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors[v.Name] = v
	return nil
}

func (s *MemoryStore) Vendor(name string) (Vendor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors[name]
	return v, ok
}

func (s *MemoryStore) FindApplication(ctx context.Context, vendor, name string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[appKey{vendor, name}]
	if !ok {
		return Application{}, ErrNotFound
	}
	app.EducationOrganizationIDs = slices.Clone(app.EducationOrganizationIDs)
	return app, nil
}

func (s *MemoryStore) SaveApplication(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	app.EducationOrganizationIDs = slices.Clone(app.EducationOrganizationIDs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[appKey{app.Vendor, app.Name}] = app
	return nil
}

func (s *MemoryStore) FindClient(ctx context.Context, vendor, application, name string) (Client, error) {
	if err := ctx.Err(); err != nil {
		return Client{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[clientKey{vendor, application, name}]
	if !ok {
		return Client{}, ErrNotFound
	}
	c.EducationOrganizationIDs = slices.Clone(c.EducationOrganizationIDs)
	return c, nil
}

func (s *MemoryStore) UpsertClient(ctx context.Context, c Client) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.EducationOrganizationIDs = slices.Clone(c.EducationOrganizationIDs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[keyOf(c)] = c
	return nil
}

func (s *MemoryStore) ListApplications(ctx context.Context) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]Application, 0, len(s.apps))
	for _, app := range s.apps {
		app.EducationOrganizationIDs = slices.Clone(app.EducationOrganizationIDs)
		out = append(out, app)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Application) int {
		if c := strings.Compare(a.Vendor, b.Vendor); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (s *MemoryStore) ListClients(ctx context.Context) ([]Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]Client, 0, len(s.clients))
	for _, c := range s.clients {
		c.EducationOrganizationIDs = slices.Clone(c.EducationOrganizationIDs)
		out = append(out, c)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Client) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}
