package cron

import (
	"context"
	"encoding/json"
	"time"

	"smartparking/config"
	"smartparking/models"
	"smartparking/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// SweepTrigger requests an occupancy sweep without waiting for it.
type SweepTrigger interface {
	Trigger()
}

// StaleExpirer expires reservations whose window has passed.
type StaleExpirer interface {
	ExpireStaleReservations(ctx context.Context) (int64, error)
}

// RedisOpt returns the asynq connection for the task queue database.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitOccupancyWorker runs the async worker and the reservation expiry
// scheduler in the background. The returned func stops both.
func InitOccupancyWorker(sweeper SweepTrigger, reservations StaleExpirer, logger *zap.Logger) func() {
	redisOpts := RedisOpt()

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeOccupancyRelease, handleReleaseTask(sweeper, logger))
	mux.HandleFunc(tasks.TypeReservationExpire, handleExpireTask(reservations, logger))

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	schedule := config.AppConfig.ReservationExpiryCron
	if schedule == "" {
		schedule = "@every 5m"
	}
	if _, err := scheduler.Register(schedule, tasks.NewExpireReservationsTask()); err != nil {
		logger.Error("[OccupancyWorker] invalid reservation expiry schedule", zap.String("cron", schedule), zap.Error(err))
	}

	// Start async worker with retry logic
	go func() {
		logger.Info("[OccupancyWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Warn("[OccupancyWorker] failed to start worker",
					zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))

				if attempts == maxAttempts {
					logger.Fatal("[OccupancyWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error("[OccupancyWorker] scheduler stopped", zap.Error(err))
		}
	}()

	return func() {
		scheduler.Shutdown()
		srv.Shutdown()
	}
}

// handleReleaseTask fires when a hold scheduled at check-in ends. The sweep
// re-reads the spot, so a hold that was extended or released early is left
// alone.
func handleReleaseTask(sweeper SweepTrigger, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReleasePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("[ReleaseHandler] invalid payload", zap.Error(err))
			return asynq.SkipRetry
		}

		logger.Debug("[ReleaseHandler] hold ended, requesting sweep",
			zap.String("spotID", p.SpotID), zap.String("until", p.Until))
		sweeper.Trigger()
		return nil
	}
}

func handleExpireTask(reservations StaleExpirer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		n, err := reservations.ExpireStaleReservations(ctx)
		if err != nil {
			logger.Error("[ExpireHandler] failed to expire reservations", zap.Error(err))
			return err
		}
		if n > 0 {
			logger.Info("[ExpireHandler] expired stale reservations", zap.Int64("count", n))
		}
		return nil
	}
}
