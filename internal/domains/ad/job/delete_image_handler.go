package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"classifieds-backend/internal/domains/ad"
	"classifieds-backend/internal/shared"
	"classifieds-backend/pkg/metrics"
)

// DeleteImageHandler xóa object ảnh của ad khỏi storage (sau khi thay ảnh / xóa ad)
type DeleteImageHandler struct {
	store ad.ImageStore
}

func NewDeleteImageHandler(store ad.ImageStore) *DeleteImageHandler {
	return &DeleteImageHandler{store: store}
}

func (h *DeleteImageHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.DeleteAdImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal DeleteAdImage payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	log.Info().
		Int64("ad_id", payload.AdID).
		Str("key", payload.Key).
		Str("prefix", payload.Prefix).
		Msg("Deleting ad images")

	if err := ad.DeleteImages(ctx, h.store, payload); err != nil {
		metrics.ImageDeletes.WithLabelValues("worker", "error").Inc()
		log.Error().Err(err).Int64("ad_id", payload.AdID).Msg("Failed to delete ad images")
		return err
	}

	metrics.ImageDeletes.WithLabelValues("worker", "ok").Inc()
	return nil
}
