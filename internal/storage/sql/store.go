// Package sql implements the storage interface on SQLite (the default) or
// PostgreSQL via sqlx, with goose-managed migrations embedded in the binary.
package sql

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/vinayskanse/blocky/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store implements the storage.Storage interface using SQL.
type Store struct {
	db *sqlx.DB
}

// New creates a new SQL store and runs pending migrations.
func New(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(driver); err != nil {
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type groupRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Enabled bool   `db:"enabled"`
}

type domainRow struct {
	GroupID string `db:"group_id"`
	Domain  string `db:"domain"`
}

type scheduleRow struct {
	GroupID   string `db:"group_id"`
	Days      string `db:"days"`
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
}

// joinDays flattens a day list into the comma-joined storage form.
func joinDays(days []string) string {
	return strings.Join(days, ",")
}

// splitDays expands the comma-joined storage form. An empty string is an
// empty list, not [""].
func splitDays(days string) []string {
	if days == "" {
		return []string{}
	}
	return strings.Split(days, ",")
}

func (s *Store) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	var rows []groupRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, enabled FROM groups ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}

	var domainRows []domainRow
	if err := s.db.SelectContext(ctx, &domainRows, `SELECT group_id, domain FROM domains ORDER BY domain`); err != nil {
		return nil, fmt.Errorf("listing domains: %w", err)
	}
	domainsByGroup := make(map[string][]string)
	for _, d := range domainRows {
		domainsByGroup[d.GroupID] = append(domainsByGroup[d.GroupID], d.Domain)
	}

	var scheduleRows []scheduleRow
	if err := s.db.SelectContext(ctx, &scheduleRows, `SELECT group_id, days, start_time, end_time FROM schedules`); err != nil {
		return nil, fmt.Errorf("listing schedules: %w", err)
	}
	schedulesByGroup := make(map[string]*domain.Schedule, len(scheduleRows))
	for _, r := range scheduleRows {
		schedulesByGroup[r.GroupID] = &domain.Schedule{
			Days:  splitDays(r.Days),
			Start: r.StartTime,
			End:   r.EndTime,
		}
	}

	groups := make([]*domain.Group, 0, len(rows))
	for _, r := range rows {
		domains := domainsByGroup[r.ID]
		if domains == nil {
			domains = []string{}
		}
		groups = append(groups, &domain.Group{
			ID:       r.ID,
			Name:     r.Name,
			Enabled:  r.Enabled,
			Domains:  domains,
			Schedule: schedulesByGroup[r.ID],
		})
	}
	return groups, nil
}

func (s *Store) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	var row groupRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT id, name, enabled FROM groups WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting group: %w", err)
	}

	var domains []string
	if err := s.db.SelectContext(ctx, &domains, s.db.Rebind(`SELECT domain FROM domains WHERE group_id = ? ORDER BY domain`), id); err != nil {
		return nil, fmt.Errorf("getting group domains: %w", err)
	}
	if domains == nil {
		domains = []string{}
	}

	group := &domain.Group{
		ID:      row.ID,
		Name:    row.Name,
		Enabled: row.Enabled,
		Domains: domains,
	}

	var sched scheduleRow
	err = s.db.GetContext(ctx, &sched, s.db.Rebind(`SELECT group_id, days, start_time, end_time FROM schedules WHERE group_id = ?`), id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no schedule
	case err != nil:
		return nil, fmt.Errorf("getting group schedule: %w", err)
	default:
		group.Schedule = &domain.Schedule{
			Days:  splitDays(sched.Days),
			Start: sched.StartTime,
			End:   sched.EndTime,
		}
	}

	return group, nil
}

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO groups (id, name, enabled) VALUES (?, ?, ?)`),
		group.ID, group.Name, group.Enabled)
	if err != nil {
		return fmt.Errorf("inserting group: %w", wrapUniqueError(err))
	}

	if err := insertDomains(ctx, tx, group.ID, group.Domains); err != nil {
		return err
	}

	if group.Schedule != nil {
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schedules (group_id, days, start_time, end_time) VALUES (?, ?, ?, ?)`),
			group.ID, joinDays(group.Schedule.Days), group.Schedule.Start, group.Schedule.End)
		if err != nil {
			return fmt.Errorf("inserting schedule: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) UpdateGroup(ctx context.Context, id, name string, enabled bool) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE groups SET name = ?, enabled = ? WHERE id = ?`),
		name, enabled, id)
	if err != nil {
		return fmt.Errorf("updating group: %w", err)
	}
	return requireRow(res)
}

func (s *Store) ReplaceDomains(ctx context.Context, id string, domains []string) error {
	if err := s.requireGroup(ctx, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM domains WHERE group_id = ?`), id); err != nil {
		return fmt.Errorf("clearing domains: %w", err)
	}
	if err := insertDomains(ctx, tx, id, domains); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) ReplaceSchedule(ctx context.Context, id string, sched domain.Schedule) error {
	if err := s.requireGroup(ctx, id); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM schedules WHERE group_id = ?`), id); err != nil {
		return fmt.Errorf("clearing schedule: %w", err)
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schedules (group_id, days, start_time, end_time) VALUES (?, ?, ?, ?)`),
		id, joinDays(sched.Days), sched.Start, sched.End)
	if err != nil {
		return fmt.Errorf("inserting schedule: %w", err)
	}

	return tx.Commit()
}

func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM groups WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM domains WHERE group_id = ?`), id); err != nil {
		return fmt.Errorf("deleting domains: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM schedules WHERE group_id = ?`), id); err != nil {
		return fmt.Errorf("deleting schedule: %w", err)
	}

	return tx.Commit()
}

type stateRow struct {
	LastDomains string       `db:"last_domains"`
	LastUpdate  sql.NullTime `db:"last_update"`
}

func (s *Store) LastState(ctx context.Context) (*domain.BlockState, error) {
	var row stateRow
	err := s.db.GetContext(ctx, &row, `SELECT last_domains, last_update FROM last_state WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting last state: %w", err)
	}

	var domains []string
	if err := json.Unmarshal([]byte(row.LastDomains), &domains); err != nil {
		return nil, fmt.Errorf("parsing last state: %w", err)
	}
	state := &domain.BlockState{Domains: domains}
	if row.LastUpdate.Valid {
		state.UpdatedAt = row.LastUpdate.Time
	}
	return state, nil
}

func (s *Store) SaveState(ctx context.Context, domains []string) error {
	if domains == nil {
		domains = []string{}
	}
	data, err := json.Marshal(domains)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM last_state WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing state: %w", err)
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO last_state (id, last_domains, last_update) VALUES (1, ?, CURRENT_TIMESTAMP)`),
		string(data))
	if err != nil {
		return fmt.Errorf("saving state: %w", err)
	}

	return tx.Commit()
}

// requireGroup returns domain.ErrNotFound when id does not exist.
func (s *Store) requireGroup(ctx context.Context, id string) error {
	var exists int
	err := s.db.GetContext(ctx, &exists, s.db.Rebind(`SELECT 1 FROM groups WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking group: %w", err)
	}
	return nil
}

// insertDomains inserts a domain list, silently collapsing duplicates.
// Duplicate handling lives here because clients forward edit text verbatim.
func insertDomains(ctx context.Context, tx *sqlx.Tx, groupID string, domains []string) error {
	seen := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO domains (group_id, domain) VALUES (?, ?)`), groupID, d)
		if err != nil {
			return fmt.Errorf("inserting domain %q: %w", d, wrapUniqueError(err))
		}
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL
	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return true
	}
	return false
}

// wrapUniqueError converts UNIQUE violations to domain.ErrAlreadyExists.
func wrapUniqueError(err error) error {
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}
