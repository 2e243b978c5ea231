package storage

import (
	"context"

	"github.com/vinayskanse/blocky/internal/domain"
)

// Storage defines the interface for the daemon's persistence layer.
// Implementations must be safe for concurrent use.
//
// Groups are returned fully assembled: the domain list and the schedule row
// (when present) are attached. Domain lists are deduplicated on write; this
// layer is the deduplication authority, clients forward duplicates verbatim.
type Storage interface {
	// Close closes the storage connection.
	Close() error

	// ListGroups returns all groups ordered by name.
	ListGroups(ctx context.Context) ([]*domain.Group, error)

	// GetGroup returns a single group by ID.
	// Returns domain.ErrNotFound if no group with that ID exists.
	GetGroup(ctx context.Context, id string) (*domain.Group, error)

	// CreateGroup inserts a group together with its domains and schedule.
	CreateGroup(ctx context.Context, group *domain.Group) error

	// UpdateGroup replaces the group's name and enabled flag. Both fields
	// are always written together.
	UpdateGroup(ctx context.Context, id, name string, enabled bool) error

	// ReplaceDomains replaces the group's domain list wholesale.
	ReplaceDomains(ctx context.Context, id string, domains []string) error

	// ReplaceSchedule replaces the group's schedule wholesale. The cleared
	// sentinel (empty days and times) is stored as-is, not removed.
	ReplaceSchedule(ctx context.Context, id string, s domain.Schedule) error

	// DeleteGroup removes a group and everything it owns.
	DeleteGroup(ctx context.Context, id string) error

	// LastState returns the persisted blocklist snapshot.
	// Returns domain.ErrNotFound when no snapshot has been saved yet.
	LastState(ctx context.Context) (*domain.BlockState, error)

	// SaveState persists the blocklist snapshot, replacing any previous one.
	SaveState(ctx context.Context, domains []string) error
}
