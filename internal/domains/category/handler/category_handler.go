package handler

import (
	"errors"
	"net/http"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"classifieds-backend/internal/domains/category"
	"classifieds-backend/internal/shared/pagination"
	"classifieds-backend/internal/shared/response"
)

type CategoryHandler struct {
	service   category.Service
	paginator pagination.Paginator
}

func NewCategoryHandler(svc category.Service, paginator pagination.Paginator) *CategoryHandler {
	return &CategoryHandler{
		service:   svc,
		paginator: paginator,
	}
}

// RegisterRoutes mounts the category endpoints on /cat.
func (h *CategoryHandler) RegisterRoutes(r gin.IRouter) {
	cat := r.Group("/cat")
	{
		cat.GET("/", h.List)
		cat.POST("/create/", h.Create)
		cat.GET("/:id/", h.GetByID)
		cat.PUT("/:id/update/", h.Update)
		cat.PATCH("/:id/update/", h.Update)
		cat.DELETE("/:id/delete/", h.Delete)
	}
}

// GET /cat/?page=N
func (h *CategoryHandler) List(c *gin.Context) {
	page := h.paginator.Parse(c.Query("page"))

	result, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result)
}

// GET /cat/:id/
func (h *CategoryHandler) GetByID(c *gin.Context) {
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

// POST /cat/create/
func (h *CategoryHandler) Create(c *gin.Context) {
	var req category.CategoryRequest
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

// PUT|PATCH /cat/:id/update/
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req category.CategoryRequest
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

// DELETE /cat/:id/delete/
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.JSON(c, http.StatusOK, category.DeleteResponse{ID: id})
}

func (h *CategoryHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ValidationError(c, err)
		return
	}

	status := category.ToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("category request failed")
		response.InternalServerError(c)
		return
	}
	response.Error(c, status, category.ToErrorCode(err), err.Error())
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid category id")
		return 0, false
	}
	return id, true
}
