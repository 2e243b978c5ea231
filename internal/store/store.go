// Package store holds the client-side view of all groups. A GroupStore is
// an explicitly constructed service object (no package-level state): the
// application builds one at startup, hands it a backend client, and every
// read or write of group state goes through it.
//
// Consistency contract: every successful mutation refetches the full group
// list from the backend before returning, so after a write returns the
// cached list reflects the backend's state at that time. Writes that fail
// leave the cache untouched; the previous fetched snapshot stays
// authoritative.
package store

import (
	"context"
	"sync"

	"github.com/vinayskanse/blocky/internal/backend"
	"github.com/vinayskanse/blocky/internal/domain"
	"github.com/vinayskanse/blocky/internal/schedule"
)

// GroupStore caches the authoritative group list and mediates every backend
// call.
//
// Concurrent FetchAll calls are not deduplicated and in-flight requests are
// not cancelled, so two racing fetches may apply out of order and the later
// response wins even if it is staler. Callers that need stricter ordering
// must serialize their own actions.
type GroupStore struct {
	client backend.Client

	mu       sync.Mutex
	groups   []domain.Group
	loading  bool
	fetchErr error
}

// New creates a GroupStore backed by the given client. The cache starts
// empty; call FetchAll to populate it.
func New(client backend.Client) *GroupStore {
	return &GroupStore{client: client}
}

// Groups returns a snapshot of the cached group list.
func (s *GroupStore) Groups() []domain.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Group(nil), s.groups...)
}

// Loading reports whether a fetch is in flight.
func (s *GroupStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// FetchErr returns the error from the most recent failed fetch, or nil if
// the last fetch succeeded. It is distinct from Loading: a failed fetch
// leaves stale data in place with this flag set.
func (s *GroupStore) FetchErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErr
}

// FetchAll requests the full group list from the backend and replaces the
// cache wholesale on success. On failure the previous list is preserved and
// the fetch error flag is set.
func (s *GroupStore) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	groups, err := s.client.GetAllGroups(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.fetchErr = err
		return err
	}
	s.groups = groups
	s.fetchErr = nil
	return nil
}

// Create forwards the request verbatim to the backend and refetches on success.
// On failure the error is returned as-is and the cache is left unchanged;
// the operation is not retried.
func (s *GroupStore) Create(ctx context.Context, req domain.CreateGroupRequest) error {
	if err := s.client.CreateGroup(ctx, req); err != nil {
		return err
	}
	return s.FetchAll(ctx)
}

// Update replaces a group's name and enabled flag. Both fields are always
// sent together, even when only one changed; partial single-field update is
// not supported at this layer.
func (s *GroupStore) Update(ctx context.Context, id, name string, enabled bool) error {
	if err := s.client.UpdateGroup(ctx, id, name, enabled); err != nil {
		return err
	}
	return s.FetchAll(ctx)
}

// UpdateDomains replaces a group's domain list wholesale.
func (s *GroupStore) UpdateDomains(ctx context.Context, id string, domains []string) error {
	if err := s.client.UpdateDomains(ctx, id, domains); err != nil {
		return err
	}
	return s.FetchAll(ctx)
}

// UpdateSchedule replaces a group's schedule wholesale. Passing the cleared
// sentinel (empty days and times) is the only way to clear a schedule.
func (s *GroupStore) UpdateSchedule(ctx context.Context, id string, sched domain.Schedule) error {
	if err := s.client.UpdateSchedule(ctx, id, sched.Days, sched.Start, sched.End); err != nil {
		return err
	}
	return s.FetchAll(ctx)
}

// Delete removes a group irreversibly and refetches on success.
func (s *GroupStore) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteGroup(ctx, id); err != nil {
		return err
	}
	return s.FetchAll(ctx)
}

// Save applies a full edit session to one group: name and enabled flag,
// then domains (from one-per-line edit text), then schedule, as three
// sequential writes, followed by a single refetch.
//
// There is no atomicity across the three writes: when an earlier write
// fails, the later ones are not attempted and the backend keeps whatever
// already landed. The cache is not refetched in that case, so the caller
// sees the pre-edit snapshot until the next successful fetch.
func (s *GroupStore) Save(ctx context.Context, id, name string, enabled bool, domainsText string, sched domain.Schedule) error {
	if err := s.client.UpdateGroup(ctx, id, name, enabled); err != nil {
		return err
	}
	if err := s.client.UpdateDomains(ctx, id, schedule.NormalizeDomainText(domainsText)); err != nil {
		return err
	}
	if err := s.client.UpdateSchedule(ctx, id, sched.Days, sched.Start, sched.End); err != nil {
		return err
	}
	return s.FetchAll(ctx)
}
