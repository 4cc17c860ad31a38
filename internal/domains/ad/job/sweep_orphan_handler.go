package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"classifieds-backend/internal/domains/ad"
	"classifieds-backend/internal/shared"
)

const (
	// Object mới hơn minOrphanAge có thể là upload chưa kịp gắn vào ad
	minOrphanAge   = time.Hour
	sweepBatchSize = 500
)

// ObjectLister liệt kê key dưới prefix đã tồn tại trước cutoff.
type ObjectLister interface {
	ListKeys(ctx context.Context, prefix string, olderThan time.Time) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// SweepOrphanImagesHandler xóa object dưới ads/ không còn ad nào tham chiếu
type SweepOrphanImagesHandler struct {
	repo    ad.Repository
	objects ObjectLister
	now     func() time.Time
}

func NewSweepOrphanImagesHandler(repo ad.Repository, objects ObjectLister) *SweepOrphanImagesHandler {
	return &SweepOrphanImagesHandler{
		repo:    repo,
		objects: objects,
		now:     time.Now,
	}
}

func (h *SweepOrphanImagesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.SweepOrphanImagesPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}
	if payload.Prefix == "" {
		payload.Prefix = ad.ImagePrefix
	}

	keys, err := h.objects.ListKeys(ctx, payload.Prefix, h.now().Add(-minOrphanAge))
	if err != nil {
		return fmt.Errorf("list objects: %w", err)
	}

	deleted := 0
	for start := 0; start < len(keys); start += sweepBatchSize {
		end := min(start+sweepBatchSize, len(keys))
		batch := keys[start:end]

		referenced, err := h.repo.ReferencedImages(ctx, batch)
		if err != nil {
			return fmt.Errorf("check references: %w", err)
		}

		for _, key := range batch {
			if referenced[key] {
				continue
			}
			if err := h.objects.Delete(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Failed to delete orphan image")
				continue
			}
			deleted++
		}
	}

	log.Info().
		Str("prefix", payload.Prefix).
		Int("scanned", len(keys)).
		Int("deleted", deleted).
		Msg("Orphan image sweep finished")
	return nil
}
