package ad

import (
	"errors"
	"net/http"

	"classifieds-backend/internal/domains/category"
	"classifieds-backend/internal/domains/user"
)

var (
	ErrAdNotFound   = errors.New("ad not found")
	ErrInvalidImage = errors.New("invalid image")
	ErrMissingImage = errors.New("image file is required")
)

// ToErrorCode converts error to API error code.
// Lỗi resolve author/category giữ code của domain gốc.
func ToErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrAdNotFound):
		return "AD_NOT_FOUND"
	case errors.Is(err, user.ErrUserNotFound):
		return user.ToErrorCode(err)
	case errors.Is(err, category.ErrCategoryNotFound):
		return category.ToErrorCode(err)
	case errors.Is(err, ErrInvalidImage):
		return "INVALID_IMAGE"
	case errors.Is(err, ErrMissingImage):
		return "BAD_REQUEST"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAdNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, category.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidImage), errors.Is(err, ErrMissingImage):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
