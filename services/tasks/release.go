package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smartparking/models"

	"github.com/hibiken/asynq"
)

const (
	TypeOccupancyRelease  = "occupancy:release"
	TypeReservationExpire = "reservation:expire"
)

// NewReleaseTask builds the task fired when an occupancy hold ends. The task
// ID makes rescheduling the same hold a no-op.
func NewReleaseTask(payload models.ReleasePayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeOccupancyRelease, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(fmt.Sprintf("release:%s:%d", payload.SpotID, fireAt.Unix())),
		asynq.MaxRetry(3),
	}
	return task, opts, nil
}

// NewExpireReservationsTask builds the periodic reservation expiry task.
func NewExpireReservationsTask() *asynq.Task {
	return asynq.NewTask(TypeReservationExpire, nil)
}

// ReleaseScheduler arranges for a sweep to run when a hold ends.
type ReleaseScheduler interface {
	ScheduleRelease(ctx context.Context, spotID string, until time.Time) error
}

// AsynqReleaseScheduler enqueues release tasks on the asynq queue.
type AsynqReleaseScheduler struct {
	Client *asynq.Client
}

func NewAsynqReleaseScheduler(client *asynq.Client) *AsynqReleaseScheduler {
	return &AsynqReleaseScheduler{Client: client}
}

func (s *AsynqReleaseScheduler) ScheduleRelease(ctx context.Context, spotID string, until time.Time) error {
	task, opts, err := NewReleaseTask(models.ReleasePayload{
		SpotID: spotID,
		Until:  until.UTC().Format(time.RFC3339),
	}, until)
	if err != nil {
		return err
	}
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to schedule release for spot %s: %w", spotID, err)
	}
	return nil
}
