package ad

import (
	"context"
	"fmt"
	"strings"

	"classifieds-backend/internal/shared"
)

// OwnsImageKey reports whether key lives under the ad's own ImageDir.
func OwnsImageKey(adID int64, key string) bool {
	return adID > 0 && strings.HasPrefix(key, ImageDir(adID))
}

// OwnedImages bỏ Key/Prefix không thuộc ImageDir(payload.AdID).
// Một ad có thể tham chiếu key ngoài thư mục của nó; key đó không bao giờ bị xóa qua ad này.
func OwnedImages(payload shared.DeleteAdImagePayload) shared.DeleteAdImagePayload {
	if !OwnsImageKey(payload.AdID, payload.Key) {
		payload.Key = ""
	}
	if payload.Prefix != ImageDir(payload.AdID) || payload.AdID <= 0 {
		payload.Prefix = ""
	}
	return payload
}

// DeleteImages removes payload.Key, then everything under payload.Prefix.
// Only objects owned by payload.AdID are touched.
func DeleteImages(ctx context.Context, store ImageStore, payload shared.DeleteAdImagePayload) error {
	payload = OwnedImages(payload)

	if payload.Key != "" {
		if err := store.Delete(ctx, payload.Key); err != nil {
			return fmt.Errorf("delete %s: %w", payload.Key, err)
		}
	}
	if payload.Prefix != "" {
		if err := store.DeleteByPrefix(ctx, payload.Prefix); err != nil {
			return fmt.Errorf("delete prefix %s: %w", payload.Prefix, err)
		}
	}
	return nil
}
