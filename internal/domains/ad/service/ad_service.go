package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"classifieds-backend/internal/domains/ad"
	"classifieds-backend/internal/domains/category"
	"classifieds-backend/internal/domains/user"
	"classifieds-backend/internal/shared"
	"classifieds-backend/internal/shared/pagination"
	"classifieds-backend/pkg/metrics"
)

const inlineCleanupTimeout = 10 * time.Second

type adService struct {
	repo         ad.Repository
	userRepo     user.Repository
	categoryRepo category.Repository
	images       ad.ImageStore
	processor    ad.ImageProcessor
	queue        ad.CleanupQueue // nil: cleanup chạy inline
}

func NewAdService(
	repo ad.Repository,
	userRepo user.Repository,
	categoryRepo category.Repository,
	images ad.ImageStore,
	processor ad.ImageProcessor,
	queue ad.CleanupQueue,
) ad.Service {
	return &adService{
		repo:         repo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		images:       images,
		processor:    processor,
		queue:        queue,
	}
}

func (s *adService) List(ctx context.Context, filter ad.AdFilter, page pagination.Request) (pagination.Page[ad.AdListItem], error) {
	ads, total, err := s.repo.List(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return pagination.Page[ad.AdListItem]{}, err
	}

	items := make([]ad.AdListItem, len(ads))
	for i := range ads {
		items[i] = ads[i].ToListItem(s.images.URL)
	}

	return pagination.NewPage(items, total, page.Limit), nil
}

func (s *adService) GetByID(ctx context.Context, id int64) (*ad.AdDetailResponse, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := d.ToDetailResponse(s.images.URL)
	return &resp, nil
}

// Create resolve author theo username và category theo tên trước khi insert;
// thiếu một trong hai thì không có row nào được ghi.
func (s *adService) Create(ctx context.Context, req ad.CreateAdRequest) (*ad.AdResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("resolve author %q: %w", req.Username, err)
	}

	cat, err := s.categoryRepo.GetByName(ctx, req.Category)
	if err != nil {
		return nil, fmt.Errorf("resolve category %q: %w", req.Category, err)
	}

	newAd := &ad.Ad{
		Name:       req.Name,
		AuthorID:   author.ID,
		Price:      *req.Price,
		CategoryID: cat.ID,
	}
	if req.Description != nil {
		newAd.Description = *req.Description
	}
	if req.IsPublished != nil {
		newAd.IsPublished = *req.IsPublished
	}
	if req.Image != nil && *req.Image != "" {
		newAd.Image = req.Image
	}

	created, err := s.repo.Create(ctx, newAd)
	if err != nil {
		return nil, err
	}

	return s.loadResponse(ctx, created.ID)
}

func (s *adService) Update(ctx context.Context, id int64, req ad.UpdateAdRequest) (*ad.AdResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	author, err := s.userRepo.GetByUsername(ctx, *req.Username)
	if err != nil {
		return nil, fmt.Errorf("resolve author %q: %w", *req.Username, err)
	}

	cat, err := s.categoryRepo.GetByName(ctx, *req.Category)
	if err != nil {
		return nil, fmt.Errorf("resolve category %q: %w", *req.Category, err)
	}

	updated := current.Ad
	updated.Name = *req.Name
	updated.AuthorID = author.ID
	updated.Price = *req.Price
	updated.Description = *req.Description
	updated.IsPublished = *req.IsPublished
	updated.CategoryID = cat.ID

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	return s.loadResponse(ctx, id)
}

// Patch chỉ ghi các field có mặt trong body. author/category là id.
func (s *adService) Patch(ctx context.Context, id int64, req ad.PatchAdRequest) (*ad.AdResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var patch ad.AdPatch

	if req.Name.Present() {
		patch.Name = &req.Name.Value
	}
	if req.Author.Present() {
		author, err := s.userRepo.GetByID(ctx, req.Author.Value)
		if err != nil {
			return nil, fmt.Errorf("resolve author %d: %w", req.Author.Value, err)
		}
		patch.AuthorID = &author.ID
	}
	if req.Price.Present() {
		patch.Price = &req.Price.Value
	}
	if req.Description.Present() {
		patch.Description = &req.Description.Value
	}
	if req.IsPublished.Present() {
		patch.IsPublished = &req.IsPublished.Value
	}
	if req.Category.Present() {
		cat, err := s.categoryRepo.GetByID(ctx, req.Category.Value)
		if err != nil {
			return nil, fmt.Errorf("resolve category %d: %w", req.Category.Value, err)
		}
		patch.CategoryID = &cat.ID
	}

	if err := s.repo.UpdateFields(ctx, id, patch); err != nil {
		return nil, err
	}

	return s.loadResponse(ctx, id)
}

func (s *adService) Delete(ctx context.Context, id int64) error {
	image, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	payload := shared.DeleteAdImagePayload{AdID: id, Prefix: ad.ImageDir(id)}
	if image != nil {
		payload.Key = *image
	}
	s.scheduleCleanup(ctx, payload)

	return nil
}

// UploadImage: validate -> normalize -> upload -> swap key trong transaction -> dọn key cũ
func (s *adService) UploadImage(ctx context.Context, id int64, data []byte) (*ad.UploadImageResponse, error) {
	if len(data) == 0 {
		return nil, ad.ErrMissingImage
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.processor.ValidateImage(data); err != nil {
		metrics.ImageUploads.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %v", ad.ErrInvalidImage, err)
	}

	normalized, err := s.processor.Normalize(data)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %v", ad.ErrInvalidImage, err)
	}

	key := ad.ImageDir(id) + uuid.NewString() + ".jpg"
	url, err := s.images.Upload(ctx, key, normalized, "image/jpeg")
	if err != nil {
		metrics.ImageUploads.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("upload image: %w", err)
	}

	previous, err := s.repo.SetImage(ctx, id, key)
	if err != nil {
		// Ad bị xóa giữa chừng hoặc DB lỗi: object vừa upload không còn ai tham chiếu
		s.scheduleCleanup(ctx, shared.DeleteAdImagePayload{AdID: id, Key: key})
		metrics.ImageUploads.WithLabelValues("error").Inc()
		return nil, err
	}

	if previous != nil && *previous != "" && *previous != key {
		s.scheduleCleanup(ctx, shared.DeleteAdImagePayload{AdID: id, Key: *previous})
	}

	metrics.ImageUploads.WithLabelValues("ok").Inc()
	log.Info().Int64("ad_id", id).Str("key", key).Int("bytes", len(normalized)).Msg("ad image uploaded")

	return &ad.UploadImageResponse{
		Name:  current.Name,
		Image: url,
	}, nil
}

func (s *adService) loadResponse(ctx context.Context, id int64) (*ad.AdResponse, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := d.ToResponse(s.images.URL)
	return &resp, nil
}

// scheduleCleanup enqueues the deletion; without a queue, or when enqueueing
// fails, it deletes inline. Failures are logged and never reach the caller.
func (s *adService) scheduleCleanup(ctx context.Context, payload shared.DeleteAdImagePayload) {
	requested := payload.Key
	payload = ad.OwnedImages(payload)
	if requested != "" && payload.Key == "" {
		log.Info().Int64("ad_id", payload.AdID).Str("key", requested).Msg("image key not owned by ad, left in storage")
	}
	if payload.Key == "" && payload.Prefix == "" {
		return
	}

	if s.queue != nil {
		err := s.queue.EnqueueDeleteAdImage(ctx, payload)
		if err == nil {
			metrics.ImageDeletes.WithLabelValues("queued", "ok").Inc()
			return
		}
		log.Warn().Err(err).Int64("ad_id", payload.AdID).Msg("enqueue image cleanup failed, deleting inline")
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), inlineCleanupTimeout)
	defer cancel()

	if err := ad.DeleteImages(cleanupCtx, s.images, payload); err != nil {
		metrics.ImageDeletes.WithLabelValues("inline", "error").Inc()
		log.Warn().Err(err).
			Int64("ad_id", payload.AdID).
			Str("key", payload.Key).
			Str("prefix", payload.Prefix).
			Msg("inline image cleanup failed")
		return
	}
	metrics.ImageDeletes.WithLabelValues("inline", "ok").Inc()
}
