package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vinayskanse/blocky/internal/api"
	"github.com/vinayskanse/blocky/internal/domain"
	"github.com/vinayskanse/blocky/internal/service"
	"github.com/vinayskanse/blocky/internal/storage/memory"
)

// testServer creates a test server with in-memory storage
type testServer struct {
	handler http.Handler
	store   *memory.Store
}

func newTestServer() *testServer {
	store := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	blocklist := service.NewBlocklistService(store, log)
	handler := api.NewRouter(store, blocklist, log)

	return &testServer{
		handler: handler,
		store:   store,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBytes)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) listGroups(t *testing.T) []domain.Group {
	t.Helper()
	rr := ts.request(http.MethodGet, "/api/v1/groups", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /groups status = %d, want 200", rr.Code)
	}
	var groups []domain.Group
	if err := json.Unmarshal(rr.Body.Bytes(), &groups); err != nil {
		t.Fatalf("decoding groups: %v", err)
	}
	return groups
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer()
	rr := ts.request(http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rr.Code)
	}
}

func TestCreateAndListGroups(t *testing.T) {
	ts := newTestServer()

	rr := ts.request(http.MethodPost, "/api/v1/groups", domain.CreateGroupRequest{
		Name:      "Social",
		Domains:   []string{"social.media", "news.site", "social.media"},
		Days:      []string{"Mon", "Wed"},
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rr.Code, rr.Body.String())
	}

	groups := ts.listGroups(t)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.ID == "" {
		t.Error("created group has no ID")
	}
	if !g.Enabled {
		t.Error("new groups should start enabled")
	}
	// The backend deduplicates domain lists.
	if len(g.Domains) != 2 {
		t.Errorf("got domains %v, want deduplicated pair", g.Domains)
	}
	if g.Schedule == nil || len(g.Schedule.Days) != 2 {
		t.Errorf("got schedule %+v, want Mon,Wed window", g.Schedule)
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	ts := newTestServer()

	tests := []struct {
		name string
		req  domain.CreateGroupRequest
	}{
		{"empty name", domain.CreateGroupRequest{Name: "", StartTime: "09:00", EndTime: "17:00"}},
		{"bad domain", domain.CreateGroupRequest{Name: "X", Domains: []string{"https://a.com"}, StartTime: "09:00", EndTime: "17:00"}},
		{"bad day", domain.CreateGroupRequest{Name: "X", Days: []string{"Monday"}, StartTime: "09:00", EndTime: "17:00"}},
		{"bad time", domain.CreateGroupRequest{Name: "X", StartTime: "25:00", EndTime: "17:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/groups", tt.req)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("create status = %d, want 400", rr.Code)
			}
		})
	}

	if got := ts.listGroups(t); len(got) != 0 {
		t.Errorf("rejected creates must not persist, got %d groups", len(got))
	}
}

func TestUpdateGroup(t *testing.T) {
	ts := newTestServer()
	ts.request(http.MethodPost, "/api/v1/groups", domain.CreateGroupRequest{Name: "Social", StartTime: "09:00", EndTime: "17:00"})
	id := ts.listGroups(t)[0].ID

	rr := ts.request(http.MethodPut, "/api/v1/groups/"+id, domain.UpdateGroupRequest{Name: "Distractions", Enabled: false})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("update status = %d, want 204: %s", rr.Code, rr.Body.String())
	}

	g := ts.listGroups(t)[0]
	if g.Name != "Distractions" || g.Enabled {
		t.Errorf("got %q enabled=%v, want Distractions enabled=false", g.Name, g.Enabled)
	}
}

func TestUpdateDomains(t *testing.T) {
	ts := newTestServer()
	ts.request(http.MethodPost, "/api/v1/groups", domain.CreateGroupRequest{
		Name: "Social", Domains: []string{"old.site"}, StartTime: "09:00", EndTime: "17:00",
	})
	id := ts.listGroups(t)[0].ID

	rr := ts.request(http.MethodPut, "/api/v1/groups/"+id+"/domains", domain.UpdateDomainsRequest{
		Domains: []string{"new.site", "other.site"},
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("update domains status = %d, want 204", rr.Code)
	}

	g := ts.listGroups(t)[0]
	if len(g.Domains) != 2 || g.Domains[0] == "old.site" {
		t.Errorf("got domains %v, want full replacement", g.Domains)
	}
}

func TestUpdateSchedule_ClearSentinel(t *testing.T) {
	ts := newTestServer()
	ts.request(http.MethodPost, "/api/v1/groups", domain.CreateGroupRequest{
		Name: "Social", Days: []string{"Mon"}, StartTime: "09:00", EndTime: "17:00",
	})
	id := ts.listGroups(t)[0].ID

	rr := ts.request(http.MethodPut, "/api/v1/groups/"+id+"/schedule", domain.UpdateScheduleRequest{
		Days: []string{}, StartTime: "", EndTime: "",
	})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("clear schedule status = %d, want 204: %s", rr.Code, rr.Body.String())
	}

	g := ts.listGroups(t)[0]
	if g.Schedule == nil {
		t.Fatal("cleared schedule should still be stored")
	}
	if len(g.Schedule.Days) != 0 || g.Schedule.Start != "" || g.Schedule.End != "" {
		t.Errorf("got schedule %+v, want cleared sentinel", g.Schedule)
	}
}

func TestDeleteGroup(t *testing.T) {
	ts := newTestServer()
	ts.request(http.MethodPost, "/api/v1/groups", domain.CreateGroupRequest{Name: "Social", StartTime: "09:00", EndTime: "17:00"})
	id := ts.listGroups(t)[0].ID

	rr := ts.request(http.MethodDelete, "/api/v1/groups/"+id, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rr.Code)
	}

	if got := ts.listGroups(t); len(got) != 0 {
		t.Errorf("deleted group still listed: %+v", got)
	}
}

func TestNotFoundMapping(t *testing.T) {
	ts := newTestServer()

	paths := []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, "/api/v1/groups/missing", domain.UpdateGroupRequest{Name: "X"}},
		{http.MethodPut, "/api/v1/groups/missing/domains", domain.UpdateDomainsRequest{}},
		{http.MethodPut, "/api/v1/groups/missing/schedule", domain.UpdateScheduleRequest{}},
		{http.MethodDelete, "/api/v1/groups/missing", nil},
	}

	for _, p := range paths {
		rr := ts.request(p.method, p.path, p.body)
		if rr.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", p.method, p.path, rr.Code)
		}
	}
}

func TestBlocklistEndpoint(t *testing.T) {
	ts := newTestServer()
	ts.request(http.MethodPost, "/api/v1/groups", domain.CreateGroupRequest{
		Name:    "Always",
		Domains: []string{"Blocked.Site"},
		// No days and no times: the cleared form, always active.
	})

	rr := ts.request(http.MethodGet, "/api/v1/blocklist", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("blocklist status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var state domain.BlockState
	if err := json.Unmarshal(rr.Body.Bytes(), &state); err != nil {
		t.Fatalf("decoding blocklist: %v", err)
	}
	if len(state.Domains) != 1 || state.Domains[0] != "blocked.site" {
		t.Errorf("got blocklist %v, want [blocked.site]", state.Domains)
	}
}
