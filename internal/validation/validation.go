// Package validation provides field validation for group, domain, and
// schedule inputs. The daemon is the authority: the UI only enforces
// "name required" and forwards everything else verbatim.
package validation

import (
	"fmt"
	"strings"

	"github.com/vinayskanse/blocky/internal/schedule"
)

const maxNameLength = 100

// ValidateGroupName validates a group display name.
func ValidateGroupName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("group name must not be empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("group name must be at most %d characters", maxNameLength)
	}
	return nil
}

// ValidateDomain validates a bare domain token. Entries come from free-form
// one-per-line edit text, so the common paste mistakes (URLs, paths, ports)
// are rejected explicitly.
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain must not be empty")
	}
	if strings.Contains(domain, "://") {
		return fmt.Errorf("domain must not include a scheme")
	}
	if strings.ContainsAny(domain, "/?#") {
		return fmt.Errorf("domain must not include a path")
	}
	if strings.Contains(domain, ":") {
		return fmt.Errorf("domain must not include a port")
	}
	if strings.ContainsAny(domain, " \t") {
		return fmt.Errorf("domain must not contain whitespace")
	}
	if !strings.Contains(strings.Trim(domain, "."), ".") {
		return fmt.Errorf("domain must contain a dot")
	}
	return nil
}

// ValidateDay validates a weekday token against the canonical Mon..Sun
// vocabulary.
func ValidateDay(day string) error {
	for _, d := range schedule.DaysOfWeek {
		if day == d {
			return nil
		}
	}
	return fmt.Errorf("unknown day %q: must be one of %s", day, strings.Join(schedule.DaysOfWeek, ", "))
}

// ValidateClock validates a "HH:MM" time-of-day string. The empty string is
// accepted: a cleared schedule stores empty start and end times.
func ValidateClock(clock string) error {
	if clock == "" {
		return nil
	}
	if _, err := schedule.ParseClock(clock); err != nil {
		return err
	}
	return nil
}
