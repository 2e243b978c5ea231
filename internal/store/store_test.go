package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinayskanse/blocky/internal/domain"
	"github.com/vinayskanse/blocky/internal/store"
)

// fakeBackend implements backend.Client in memory with the daemon's
// semantics: create assigns IDs and starts groups enabled, domain lists are
// deduplicated, schedules are replaced wholesale. Individual operations can
// be made to fail to exercise the store's error paths.
type fakeBackend struct {
	mu     sync.Mutex
	groups []domain.Group
	nextID int
	calls  []string

	failGetAll         error
	failCreate         error
	beforeCreate       func() error
	failUpdate         error
	failUpdateDomains  error
	failUpdateSchedule error
	failDelete         error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{}
}

func (f *fakeBackend) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) GetAllGroups(ctx context.Context) ([]domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetAllGroups")
	if f.failGetAll != nil {
		return nil, f.failGetAll
	}
	out := make([]domain.Group, len(f.groups))
	for i, g := range f.groups {
		out[i] = copyGroup(g)
	}
	return out, nil
}

func (f *fakeBackend) CreateGroup(ctx context.Context, req domain.CreateGroupRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateGroup")
	if f.failCreate != nil {
		return f.failCreate
	}
	if f.beforeCreate != nil {
		if err := f.beforeCreate(); err != nil {
			return err
		}
	}
	f.nextID++
	days := req.Days
	if days == nil {
		days = []string{}
	}
	f.groups = append(f.groups, domain.Group{
		ID:      fmt.Sprintf("g%d", f.nextID),
		Name:    req.Name,
		Enabled: true,
		Domains: dedupe(req.Domains),
		Schedule: &domain.Schedule{
			Days:  days,
			Start: req.StartTime,
			End:   req.EndTime,
		},
	})
	return nil
}

func (f *fakeBackend) UpdateGroup(ctx context.Context, id, name string, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateGroup")
	if f.failUpdate != nil {
		return f.failUpdate
	}
	g := f.find(id)
	if g == nil {
		return domain.ErrNotFound
	}
	g.Name = name
	g.Enabled = enabled
	return nil
}

func (f *fakeBackend) UpdateDomains(ctx context.Context, id string, domains []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateDomains")
	if f.failUpdateDomains != nil {
		return f.failUpdateDomains
	}
	g := f.find(id)
	if g == nil {
		return domain.ErrNotFound
	}
	g.Domains = dedupe(domains)
	return nil
}

func (f *fakeBackend) UpdateSchedule(ctx context.Context, id string, days []string, startTime, endTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateSchedule")
	if f.failUpdateSchedule != nil {
		return f.failUpdateSchedule
	}
	g := f.find(id)
	if g == nil {
		return domain.ErrNotFound
	}
	if days == nil {
		days = []string{}
	}
	g.Schedule = &domain.Schedule{Days: days, Start: startTime, End: endTime}
	return nil
}

func (f *fakeBackend) DeleteGroup(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteGroup")
	if f.failDelete != nil {
		return f.failDelete
	}
	for i, g := range f.groups {
		if g.ID == id {
			f.groups = append(f.groups[:i], f.groups[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeBackend) find(id string) *domain.Group {
	for i := range f.groups {
		if f.groups[i].ID == id {
			return &f.groups[i]
		}
	}
	return nil
}

func copyGroup(g domain.Group) domain.Group {
	c := g
	c.Domains = append([]string(nil), g.Domains...)
	if g.Schedule != nil {
		sc := *g.Schedule
		sc.Days = append([]string(nil), g.Schedule.Days...)
		c.Schedule = &sc
	}
	return c
}

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

func createReq(name string, domains ...string) domain.CreateGroupRequest {
	return domain.CreateGroupRequest{
		Name:      name,
		Domains:   domains,
		Days:      []string{"Mon", "Fri"},
		StartTime: "09:00",
		EndTime:   "17:00",
	}
}

func TestFetchAll_PopulatesCache(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	s := store.New(be)

	require.NoError(t, s.Create(ctx, createReq("Social", "social.media")))

	groups := s.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Social", groups[0].Name)
	assert.True(t, groups[0].Enabled)
	assert.False(t, s.Loading())
	assert.NoError(t, s.FetchErr())
}

func TestFetchAll_FailurePreservesPreviousList(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	s := store.New(be)

	require.NoError(t, s.Create(ctx, createReq("Social", "social.media")))

	be.failGetAll = errors.New("backend unreachable")
	err := s.FetchAll(ctx)
	require.Error(t, err)

	// Stale data stays visible; the error flag is set.
	assert.Len(t, s.Groups(), 1)
	assert.Error(t, s.FetchErr())
	assert.False(t, s.Loading())

	// A later successful fetch clears the flag.
	be.failGetAll = nil
	require.NoError(t, s.FetchAll(ctx))
	assert.NoError(t, s.FetchErr())
}

func TestCreate_RefetchesBeforeReturning(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	s := store.New(be)

	require.NoError(t, s.Create(ctx, createReq("Work", "chat.app", "news.site", "chat.app")))

	groups := s.Groups()
	require.Len(t, groups, 1)
	// The backend deduplicated; the store shows the confirmed state.
	assert.Equal(t, []string{"chat.app", "news.site"}, groups[0].Domains)
	require.NotNil(t, groups[0].Schedule)
	assert.Equal(t, []string{"Mon", "Fri"}, groups[0].Schedule.Days)
}

func TestCreate_FailureLeavesCacheUnchanged(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	s := store.New(be)
	require.NoError(t, s.Create(ctx, createReq("Social", "social.media")))

	be.failCreate = errors.New("validation failed")
	before := len(be.calls)
	err := s.Create(ctx, createReq("Broken"))
	require.Error(t, err)

	assert.Len(t, s.Groups(), 1)
	// Failed writes do not trigger a refetch.
	assert.Equal(t, []string{"CreateGroup"}, be.calls[before:])
}

func TestUpdate_ReflectedAfterReturn(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	s := store.New(be)
	require.NoError(t, s.Create(ctx, createReq("Social", "social.media")))
	id := s.Groups()[0].ID

	require.NoError(t, s.Update(ctx, id, "Distractions", false))

	groups := s.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Distractions", groups[0].Name)
	assert.False(t, groups[0].Enabled)
}

func TestUpdateSchedule_ClearSentinel(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	s := store.New(be)
	require.NoError(t, s.Create(ctx, createReq("Social", "social.media")))
	id := s.Groups()[0].ID

	require.NoError(t, s.UpdateSchedule(ctx, id, domain.Schedule{Days: []string{}, Start: "", End: ""}))

	sched := s.Groups()[0].Schedule
	require.NotNil(t, sched)
	assert.Empty(t, sched.Days)
	assert.Empty(t, sched.Start)
	assert.Empty(t, sched.End)
}

func TestDelete_GoneAfterReturn(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	s := store.New(be)
	require.NoError(t, s.Create(ctx, createReq("Social", "social.media")))
	require.NoError(t, s.Create(ctx, createReq("Games", "games.gg")))

	id := s.Groups()[0].ID
	require.NoError(t, s.Delete(ctx, id))

	groups := s.Groups()
	require.Len(t, groups, 1)
	assert.NotEqual(t, id, groups[0].ID)
}

func TestSave_AppliesAllThreeWrites(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	s := store.New(be)
	require.NoError(t, s.Create(ctx, createReq("Social", "social.media")))
	id := s.Groups()[0].ID

	sched := domain.Schedule{Days: []string{"Sat", "Sun"}, Start: "10:00", End: "20:00"}
	require.NoError(t, s.Save(ctx, id, "Weekend", true, "  games.gg \n\nvideos.tv\n", sched))

	groups := s.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "Weekend", groups[0].Name)
	assert.Equal(t, []string{"games.gg", "videos.tv"}, groups[0].Domains)
	require.NotNil(t, groups[0].Schedule)
	assert.Equal(t, []string{"Sat", "Sun"}, groups[0].Schedule.Days)
	assert.Equal(t, "10:00", groups[0].Schedule.Start)
	assert.Equal(t, "20:00", groups[0].Schedule.End)
}

func TestSave_StopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	s := store.New(be)
	require.NoError(t, s.Create(ctx, createReq("Social", "social.media")))
	id := s.Groups()[0].ID

	be.failUpdateDomains = errors.New("backend rejected")
	before := len(be.calls)

	err := s.Save(ctx, id, "Renamed", true, "games.gg", domain.Schedule{Days: []string{"Mon"}, Start: "08:00", End: "12:00"})
	require.Error(t, err)

	// The name write landed, the domains write failed, the schedule write
	// was never attempted and no refetch happened.
	assert.Equal(t, []string{"UpdateGroup", "UpdateDomains"}, be.calls[before:])
	assert.Equal(t, "Renamed", be.groups[0].Name)
	assert.Equal(t, []string{"social.media"}, be.groups[0].Domains)

	// The cache still shows the pre-edit snapshot.
	assert.Equal(t, "Social", s.Groups()[0].Name)
}
