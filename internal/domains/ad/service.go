package ad

import (
	"context"

	"classifieds-backend/internal/shared"
	"classifieds-backend/internal/shared/pagination"
)

type Service interface {
	List(ctx context.Context, filter AdFilter, page pagination.Request) (pagination.Page[AdListItem], error)
	GetByID(ctx context.Context, id int64) (*AdDetailResponse, error)
	Create(ctx context.Context, req CreateAdRequest) (*AdResponse, error)
	Update(ctx context.Context, id int64, req UpdateAdRequest) (*AdResponse, error)
	Patch(ctx context.Context, id int64, req PatchAdRequest) (*AdResponse, error)
	Delete(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, id int64, data []byte) (*UploadImageResponse, error)
}

// ImageStore is the object storage holding ad images.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	URL(key string) string
}

// ImageProcessor validates and normalises uploaded images.
type ImageProcessor interface {
	ValidateImage(data []byte) error
	Normalize(data []byte) ([]byte, error)
}

// CleanupQueue schedules deletion of image objects out of band.
type CleanupQueue interface {
	EnqueueDeleteAdImage(ctx context.Context, payload shared.DeleteAdImagePayload) error
}
