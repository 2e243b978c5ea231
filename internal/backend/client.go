// Package backend defines the command surface the front-end uses to reach
// the blocky daemon, and its HTTP implementation. The daemon is the source
// of truth for persisted group state; everything the UI shows is a cache of
// what these commands return.
package backend

import (
	"context"

	"github.com/vinayskanse/blocky/internal/domain"
)

// Client is the command surface of the backend. All mutations are
// fire-and-confirm: on success the caller refetches rather than patching
// local state.
type Client interface {
	// GetAllGroups returns every group with domains and schedule attached.
	GetAllGroups(ctx context.Context) ([]domain.Group, error)

	// CreateGroup creates a group from the given fields. New groups start
	// enabled.
	CreateGroup(ctx context.Context, req domain.CreateGroupRequest) error

	// UpdateGroup replaces a group's name and enabled flag together.
	UpdateGroup(ctx context.Context, id, name string, enabled bool) error

	// UpdateDomains replaces a group's domain list wholesale.
	UpdateDomains(ctx context.Context, id string, domains []string) error

	// UpdateSchedule replaces a group's schedule wholesale. Empty days and
	// times clear it.
	UpdateSchedule(ctx context.Context, id string, days []string, startTime, endTime string) error

	// DeleteGroup deletes a group irreversibly.
	DeleteGroup(ctx context.Context, id string) error
}
