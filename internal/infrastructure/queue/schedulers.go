package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"classifieds-backend/internal/shared"
	"classifieds-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisOpt asynq.RedisClientOpt) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerSweepOrphanImagesJob()
}

// ================================================
// Sweep orphan ad images (Daily at 3 AM UTC)
// ================================================
func (s *Scheduler) registerSweepOrphanImagesJob() error {
	payload, err := json.Marshal(shared.SweepOrphanImagesPayload{Prefix: "ads/"})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeSweepOrphanAdImages, payload)

	_, err = s.scheduler.Register(
		"0 3 * * *",
		task,
		asynq.Queue(shared.QueueAd),
		asynq.MaxRetry(1),
		asynq.Timeout(15*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register SweepOrphanAdImages job", err)
		return err
	}

	logger.Info("Registered SweepOrphanAdImages: daily at 3 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
