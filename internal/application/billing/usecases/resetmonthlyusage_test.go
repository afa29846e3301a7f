package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResetMonthlyUsageUseCase_ResetsExactMonth(t *testing.T) {
	usageRepo := newFakeUsageRepo()
	usageRepo.resetN = 42
	uc := NewResetMonthlyUsageUseCase(usageRepo, noopLogger{})

	count, err := uc.Execute(context.Background(), "2026-05")

	assert.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.Equal(t, []string{"2026-05"}, usageRepo.resets)
}

func TestResetMonthlyUsageUseCase_RejectsBadMonthKey(t *testing.T) {
	usageRepo := newFakeUsageRepo()
	uc := NewResetMonthlyUsageUseCase(usageRepo, noopLogger{})

	tests := []struct {
		name  string
		month string
	}{
		{"empty", ""},
		{"unpadded", "2026-5"},
		{"full date", "2026-05-01"},
		{"month thirteen", "2026-13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.month)
			assert.Error(t, err)
		})
	}

	assert.Empty(t, usageRepo.resets, "invalid keys must not touch the store")
}

func TestResetMonthlyUsageUseCase_RepoFailure(t *testing.T) {
	usageRepo := newFakeUsageRepo()
	usageRepo.resetErr = assert.AnError
	uc := NewResetMonthlyUsageUseCase(usageRepo, noopLogger{})

	count, err := uc.Execute(context.Background(), "2026-05")

	assert.Error(t, err)
	assert.Equal(t, int64(0), count)
}
