package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"classifieds-backend/internal/shared"
)

// Client enqueues background tasks for the API process.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, password string, db int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		}),
	}
}

// EnqueueDeleteAdImage schedules removal of an ad's stored image objects.
func (c *Client) EnqueueDeleteAdImage(ctx context.Context, payload shared.DeleteAdImagePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeDeleteAdImage, data)
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueAd),
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeDeleteAdImage, err)
	}

	log.Debug().
		Str("task_id", info.ID).
		Int64("ad_id", payload.AdID).
		Str("key", payload.Key).
		Str("prefix", payload.Prefix).
		Msg("[QUEUE] Delete image task enqueued")
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
