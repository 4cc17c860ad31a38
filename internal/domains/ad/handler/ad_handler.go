package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"classifieds-backend/internal/domains/ad"
	"classifieds-backend/internal/shared/pagination"
	"classifieds-backend/internal/shared/response"
)

// multipart overhead cho phép ngoài dung lượng file
const multipartSlack = 1 << 20

type AdHandler struct {
	service        ad.Service
	paginator      pagination.Paginator
	maxUploadBytes int64
}

func NewAdHandler(svc ad.Service, paginator pagination.Paginator, maxUploadBytes int64) *AdHandler {
	return &AdHandler{
		service:        svc,
		paginator:      paginator,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes mounts the ad endpoints on /ad.
func (h *AdHandler) RegisterRoutes(r gin.IRouter) {
	ads := r.Group("/ad")
	{
		ads.GET("/", h.List)
		ads.POST("/create/", h.Create)
		ads.GET("/:id/", h.GetByID)
		ads.PUT("/:id/update/", h.Update)
		ads.PATCH("/:id/update/", h.Patch)
		ads.DELETE("/:id/delete/", h.Delete)
		ads.POST("/:id/upload_image/", h.UploadImage)
	}
}

// ════════════════════════════════════════════════════════════════
// GET /ad/?page=N&cat=1&cat=2&text=bike&price_from=10&price_to=500
// ════════════════════════════════════════════════════════════════

func (h *AdHandler) List(c *gin.Context) {
	filter, err := ad.ParseAdFilter(c.Request.URL.Query())
	if err != nil {
		response.ValidationError(c, err)
		return
	}

	page := h.paginator.Parse(c.Query("page"))

	result, err := h.service.List(c.Request.Context(), filter, page)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result)
}

// GET /ad/:id/
func (h *AdHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, resp)
}

// POST /ad/create/
func (h *AdHandler) Create(c *gin.Context) {
	var req ad.CreateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, resp)
}

// PUT /ad/:id/update/
func (h *AdHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ad.UpdateAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, resp)
}

// PATCH /ad/:id/update/
func (h *AdHandler) Patch(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req ad.PatchAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.Patch(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, resp)
}

// DELETE /ad/:id/delete/
func (h *AdHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, ad.DeleteAdResponse{ID: id})
}

// POST /ad/:id/upload_image/ (multipart/form-data, field "image")
func (h *AdHandler) UploadImage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartSlack)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.handleError(c, fmt.Errorf("%w: exceeds %d bytes", ad.ErrInvalidImage, h.maxUploadBytes))
			return
		}
		h.handleError(c, ad.ErrMissingImage)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.handleError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	// Đọc tối đa maxUploadBytes+1 để phát hiện file quá lớn
	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		h.handleError(c, fmt.Errorf("read upload: %w", err))
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		h.handleError(c, fmt.Errorf("%w: exceeds %d bytes", ad.ErrInvalidImage, h.maxUploadBytes))
		return
	}

	resp, err := h.service.UploadImage(c.Request.Context(), id, data)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, resp)
}

func (h *AdHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, err)
		return
	}

	status := ad.ToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("ad request failed")
		response.InternalServerError(c)
		return
	}
	response.Error(c, status, ad.ToErrorCode(err), err.Error())
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid ad id")
		return 0, false
	}
	return id, true
}
