// Package memory provides an in-memory implementation of the storage
// interface for testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vinayskanse/blocky/internal/domain"
)

// Store is an in-memory implementation of storage.Storage.
type Store struct {
	mu sync.RWMutex

	groups map[string]*domain.Group // key: id
	state  *domain.BlockState
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		groups: make(map[string]*domain.Group),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*domain.Group, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, copyGroup(g))
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Name != groups[j].Name {
			return groups[i].Name < groups[j].Name
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

func (s *Store) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyGroup(g), nil
}

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[group.ID]; ok {
		return domain.ErrAlreadyExists
	}
	g := copyGroup(group)
	g.Domains = dedupe(g.Domains)
	s.groups[group.ID] = g
	return nil
}

func (s *Store) UpdateGroup(ctx context.Context, id, name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return domain.ErrNotFound
	}
	g.Name = name
	g.Enabled = enabled
	return nil
}

func (s *Store) ReplaceDomains(ctx context.Context, id string, domains []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return domain.ErrNotFound
	}
	g.Domains = dedupe(domains)
	return nil
}

func (s *Store) ReplaceSchedule(ctx context.Context, id string, sched domain.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return domain.ErrNotFound
	}
	c := sched
	c.Days = append([]string(nil), sched.Days...)
	g.Schedule = &c
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.groups, id)
	return nil
}

func (s *Store) LastState(ctx context.Context) (*domain.BlockState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil, domain.ErrNotFound
	}
	c := *s.state
	c.Domains = append([]string(nil), s.state.Domains...)
	return &c, nil
}

func (s *Store) SaveState(ctx context.Context, domains []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = &domain.BlockState{
		Domains:   append([]string(nil), domains...),
		UpdatedAt: time.Now(),
	}
	return nil
}

func copyGroup(g *domain.Group) *domain.Group {
	c := *g
	c.Domains = append([]string(nil), g.Domains...)
	if g.Schedule != nil {
		sc := *g.Schedule
		sc.Days = append([]string(nil), g.Schedule.Days...)
		c.Schedule = &sc
	}
	return &c
}

// dedupe removes duplicate domains keeping first-seen order.
func dedupe(domains []string) []string {
	seen := make(map[string]struct{}, len(domains))
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
