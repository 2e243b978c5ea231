package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vinayskanse/blocky/internal/domain"
	"github.com/vinayskanse/blocky/internal/schedule"
	"github.com/vinayskanse/blocky/internal/storage"
)

// BlocklistService keeps the persisted blocklist snapshot in step with the
// group schedules. On every tick it evaluates all groups against the current
// instant and saves the resulting domain set when it differs from the stored
// one, so consumers only observe real transitions.
type BlocklistService struct {
	store storage.Storage
	log   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewBlocklistService creates a new BlocklistService.
func NewBlocklistService(store storage.Storage, log *slog.Logger) *BlocklistService {
	return &BlocklistService{store: store, log: log}
}

// Start begins periodic recomputation on the given cron spec
// (standard 5-field syntax, e.g. "* * * * *" for every minute).
func (s *BlocklistService) Start(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, _, err := s.Recompute(context.Background()); err != nil {
			s.log.Error("blocklist recompute failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling blocklist refresh: %w", err)
	}
	c.Start()
	s.cron = c
	return nil
}

// Stop halts periodic recomputation. In-flight recomputes finish.
func (s *BlocklistService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Recompute evaluates all group schedules now and persists the active domain
// set if it changed. It returns the set and whether a new snapshot was saved.
func (s *BlocklistService) Recompute(ctx context.Context) ([]string, bool, error) {
	return s.recomputeAt(ctx, time.Now())
}

func (s *BlocklistService) recomputeAt(ctx context.Context, now time.Time) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.store.ListGroups(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("listing groups: %w", err)
	}
	groups := make([]domain.Group, 0, len(stored))
	for _, g := range stored {
		groups = append(groups, *g)
	}

	active := schedule.ActiveDomains(groups, now)

	last, err := s.store.LastState(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("loading last state: %w", err)
	}
	if last != nil && slices.Equal(last.Domains, active) {
		return active, false, nil
	}

	if err := s.store.SaveState(ctx, active); err != nil {
		return nil, false, fmt.Errorf("saving state: %w", err)
	}
	s.log.Info("blocklist changed", "domains", len(active))
	return active, true, nil
}

// Current returns the persisted blocklist snapshot, computing one first when
// none has been saved yet.
func (s *BlocklistService) Current(ctx context.Context) (*domain.BlockState, error) {
	state, err := s.store.LastState(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		if _, _, err := s.Recompute(ctx); err != nil {
			return nil, err
		}
		return s.store.LastState(ctx)
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}
