package usage

import (
	"testing"
	"time"

	"github.com/stylora-app/stylora/internal/domain/subscription"
)

func TestNewCounter(t *testing.T) {
	tests := []struct {
		name    string
		userID  uint
		month   string
		wantErr bool
	}{
		{"valid", 1, "2026-06", false},
		{"zero user", 0, "2026-06", true},
		{"bad month key", 1, "2026-6", true},
		{"full date key", 1, "2026-06-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter, err := NewCounter(tt.userID, tt.month)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCounter(%d, %q) error = %v, wantErr %v", tt.userID, tt.month, err, tt.wantErr)
				return
			}
			if err == nil && counter.Month() != tt.month {
				t.Errorf("month = %q, want %q", counter.Month(), tt.month)
			}
		})
	}
}

func TestCounter_Used(t *testing.T) {
	counter, err := ReconstructCounter(1, 7, "2026-06", 5, 2, 1, time.Now().UTC())
	if err != nil {
		t.Fatalf("ReconstructCounter() error = %v", err)
	}

	tests := []struct {
		name     string
		feature  subscription.Feature
		expected int64
	}{
		{"ai generations", subscription.FeatureAIGeneration, 5},
		{"try on renders", subscription.FeatureTryOn, 2},
		{"weekly plans", subscription.FeatureWeeklyPlan, 1},
		{"unknown feature", subscription.Feature("export_pdf"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counter.Used(tt.feature); got != tt.expected {
				t.Errorf("Used(%q) = %d, want %d", tt.feature, got, tt.expected)
			}
		})
	}
}

func TestReconstructCounter_Invalid(t *testing.T) {
	now := time.Now().UTC()

	if _, err := ReconstructCounter(0, 1, "2026-06", 0, 0, 0, now); err == nil {
		t.Error("zero id accepted")
	}
	if _, err := ReconstructCounter(1, 0, "2026-06", 0, 0, 0, now); err == nil {
		t.Error("zero user id accepted")
	}
	if _, err := ReconstructCounter(1, 1, "bad", 0, 0, 0, now); err == nil {
		t.Error("malformed month key accepted")
	}
}
