package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"smartparking/models"
	"smartparking/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type triggerCounter struct{ n int }

func (t *triggerCounter) Trigger() { t.n++ }

type expirer struct {
	n   int64
	err error
}

func (e expirer) ExpireStaleReservations(context.Context) (int64, error) { return e.n, e.err }

func TestHandleReleaseTask(t *testing.T) {
	sweeper := &triggerCounter{}
	handler := handleReleaseTask(sweeper, zap.NewNop())

	until := time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC)
	task, _, err := tasks.NewReleaseTask(models.ReleasePayload{SpotID: "s1", Until: until.Format(time.RFC3339)}, until)
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	assert.Equal(t, 1, sweeper.n)

	err = handler(context.Background(), asynq.NewTask(tasks.TypeOccupancyRelease, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Equal(t, 1, sweeper.n)
}

func TestHandleExpireTask(t *testing.T) {
	task := tasks.NewExpireReservationsTask()

	assert.NoError(t, handleExpireTask(expirer{n: 3}, zap.NewNop())(context.Background(), task))

	down := errors.New("store down")
	assert.ErrorIs(t, handleExpireTask(expirer{err: down}, zap.NewNop())(context.Background(), task), down)
}
