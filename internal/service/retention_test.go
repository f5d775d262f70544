package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRetentionRunDeletesPastCutoff(t *testing.T) {
	runs := newMockRunStore()
	runs.deleteCount = 3

	svc := NewRetentionService(runs, 30*24*time.Hour, zap.NewNop())
	svc.run(context.Background())

	if assert.NotNil(t, runs.deletedPast) {
		wantCutoff := time.Now().Add(-30 * 24 * time.Hour)
		assert.WithinDuration(t, wantCutoff, *runs.deletedPast, time.Minute)
	}
}

func TestRetentionDisabledWhenMaxAgeZero(t *testing.T) {
	runs := newMockRunStore()

	svc := NewRetentionService(runs, 0, zap.NewNop())
	svc.Start() // no goroutine started
	svc.Stop()

	assert.Nil(t, runs.deletedPast)
}
