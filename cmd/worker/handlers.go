package main

import (
	"github.com/hibiken/asynq"

	adJob "classifieds-backend/internal/domains/ad/job"
	"classifieds-backend/internal/shared"
	"classifieds-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	deleteAdImage     *adJob.DeleteImageHandler
	sweepOrphanImages *adJob.SweepOrphanImagesHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		deleteAdImage:     adJob.NewDeleteImageHandler(c.Storage),
		sweepOrphanImages: adJob.NewSweepOrphanImagesHandler(c.AdRepo, c.Storage),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeDeleteAdImage, h.deleteAdImage.ProcessTask)
	mux.HandleFunc(shared.TypeSweepOrphanAdImages, h.sweepOrphanImages.ProcessTask)
}
