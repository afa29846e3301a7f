package biztime

import (
	"testing"
	"time"
)

func TestMonthKey(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{"mid month", time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC), "2026-06"},
		{"first instant", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "2026-01"},
		{"last instant", time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), "2026-12"},
		{
			// 2026-07-01 03:00 in UTC+8 is still June 30 in UTC.
			name:     "non-utc input normalized",
			input:    time.Date(2026, 7, 1, 3, 0, 0, 0, time.FixedZone("plus8", 8*3600)),
			expected: "2026-06",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthKey(tt.input); got != tt.expected {
				t.Errorf("MonthKey(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPreviousMonthKey(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{"mid year", time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), "2026-05"},
		{"january wraps year", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), "2025-12"},
		{"first instant of month", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "2026-02"},
		{"march after leap february", time.Date(2028, 3, 31, 0, 0, 0, 0, time.UTC), "2028-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PreviousMonthKey(tt.input); got != tt.expected {
				t.Errorf("PreviousMonthKey(%v) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateMonthKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid", "2026-06", false},
		{"valid december", "2026-12", false},
		{"month zero", "2026-00", true},
		{"month thirteen", "2026-13", true},
		{"missing zero padding", "2026-6", true},
		{"full date", "2026-06-01", true},
		{"empty", "", true},
		{"garbage", "june 2026", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMonthKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMonthKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestMonthStart(t *testing.T) {
	got, err := MonthStart("2026-06")
	if err != nil {
		t.Fatalf("MonthStart() error = %v", err)
	}
	want := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("MonthStart(2026-06) = %v, want %v", got, want)
	}

	if _, err := MonthStart("2026-6"); err == nil {
		t.Error("MonthStart with malformed key error = nil, want error")
	}
}
