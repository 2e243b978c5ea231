package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vinayskanse/blocky/internal/domain"
)

// Default edit window substituted for missing schedule fields on import,
// matching the new-group form defaults.
const (
	defaultStartTime = "09:00"
	defaultEndTime   = "17:00"
)

// ExportedGroup is one entry of the bulk interchange format. IDs are
// deliberately absent: the backend assigns fresh ones on import.
type ExportedGroup struct {
	Name     string           `json:"name"`
	Enabled  bool             `json:"enabled"`
	Domains  []string         `json:"domains"`
	Schedule *domain.Schedule `json:"schedule,omitempty"`
}

// Export serializes the cached group list as formatted JSON in the bulk
// interchange format. Call FetchAll first if freshness matters.
func (s *GroupStore) Export() ([]byte, error) {
	groups := s.Groups()
	out := make([]ExportedGroup, 0, len(groups))
	for _, g := range groups {
		domains := g.Domains
		if domains == nil {
			domains = []string{}
		}
		out = append(out, ExportedGroup{
			Name:     g.Name,
			Enabled:  g.Enabled,
			Domains:  domains,
			Schedule: g.Schedule,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding groups: %w", err)
	}
	return data, nil
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Created int
	Skipped int
}

// importEntry mirrors ExportedGroup but keeps enough structure to tell a
// missing field from an empty one, which drives the default substitution
// and the per-entry skip policy.
type importEntry struct {
	Name     string          `json:"name"`
	Enabled  *bool           `json:"enabled"`
	Domains  json.RawMessage `json:"domains"`
	Schedule *struct {
		Days  *[]string `json:"days"`
		Start *string   `json:"start"`
		End   *string   `json:"end"`
	} `json:"schedule"`
}

// Import creates groups from bulk interchange data, one create call per
// entry, in order. Entries missing a name or with a non-list domains field
// are skipped individually; any backend failure aborts the remainder while
// earlier creates stay committed (there is no transactional guarantee).
//
// A missing schedule defaults to no days and a 09:00-17:00 window; a
// missing enabled flag defaults to true. Since the create command always
// enables, an explicit enabled=false is restored with a follow-up update.
func (s *GroupStore) Import(ctx context.Context, data []byte) (ImportResult, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return ImportResult{}, fmt.Errorf("parsing import data: %w", err)
	}

	var res ImportResult
	for _, raw := range entries {
		var e importEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			res.Skipped++
			continue
		}
		if e.Name == "" {
			res.Skipped++
			continue
		}

		domains := []string{}
		if len(e.Domains) > 0 && string(e.Domains) != "null" {
			if err := json.Unmarshal(e.Domains, &domains); err != nil {
				res.Skipped++
				continue
			}
		}

		days := []string{}
		start, end := defaultStartTime, defaultEndTime
		if e.Schedule != nil {
			if e.Schedule.Days != nil {
				days = *e.Schedule.Days
			}
			if e.Schedule.Start != nil {
				start = *e.Schedule.Start
			}
			if e.Schedule.End != nil {
				end = *e.Schedule.End
			}
		}

		before := make(map[string]struct{})
		for _, g := range s.Groups() {
			before[g.ID] = struct{}{}
		}

		err := s.Create(ctx, domain.CreateGroupRequest{
			Name:      e.Name,
			Domains:   domains,
			Days:      days,
			StartTime: start,
			EndTime:   end,
		})
		if err != nil {
			return res, fmt.Errorf("importing %q: %w", e.Name, err)
		}
		res.Created++

		if e.Enabled != nil && !*e.Enabled {
			if err := s.disableImported(ctx, e.Name, before); err != nil {
				return res, fmt.Errorf("importing %q: %w", e.Name, err)
			}
		}
	}
	return res, nil
}

// disableImported flips the freshly created group (the one whose ID was not
// present before the create) back to disabled.
func (s *GroupStore) disableImported(ctx context.Context, name string, before map[string]struct{}) error {
	for _, g := range s.Groups() {
		if _, existed := before[g.ID]; existed {
			continue
		}
		if g.Name != name {
			continue
		}
		return s.Update(ctx, g.ID, g.Name, false)
	}
	return fmt.Errorf("created group %q not found after refetch: %w", name, domain.ErrNotFound)
}
