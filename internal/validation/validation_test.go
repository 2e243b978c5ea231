package validation

import (
	"testing"
)

func TestValidateGroupName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"simple name", "Work Focus", false},
		{"single word", "Social", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", string(make([]byte, 101)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGroupName(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGroupName(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		wantErr bool
	}{
		{"bare domain", "example.com", false},
		{"subdomain", "www.social.media", false},
		{"empty", "", true},
		{"with scheme", "https://example.com", true},
		{"with path", "example.com/watch", true},
		{"with query", "example.com?v=1", true},
		{"with port", "example.com:8080", true},
		{"with space", "example .com", true},
		{"no dot", "localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDomain(tt.domain)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDomain(%q) error = %v, wantErr %v", tt.domain, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDay(t *testing.T) {
	for _, day := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		if err := ValidateDay(day); err != nil {
			t.Errorf("ValidateDay(%q) unexpected error: %v", day, err)
		}
	}
	for _, day := range []string{"", "mon", "Monday", "Mo", "8"} {
		if err := ValidateDay(day); err == nil {
			t.Errorf("ValidateDay(%q) expected error", day)
		}
	}
}

func TestValidateClock(t *testing.T) {
	tests := []struct {
		clock   string
		wantErr bool
	}{
		{"09:00", false},
		{"23:59", false},
		{"", false}, // cleared schedules store empty times
		{"24:00", true},
		{"12:60", true},
		{"noon", true},
	}

	for _, tt := range tests {
		err := ValidateClock(tt.clock)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateClock(%q) error = %v, wantErr %v", tt.clock, err, tt.wantErr)
		}
	}
}
