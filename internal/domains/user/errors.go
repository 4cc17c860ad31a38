package user

import (
	"errors"
	"net/http"
)

var ErrUserNotFound = errors.New("user not found")

func ToErrorCode(err error) string {
	if errors.Is(err, ErrUserNotFound) {
		return "USER_NOT_FOUND"
	}
	return "INTERNAL_ERROR"
}

func ToHTTPStatus(err error) int {
	if errors.Is(err, ErrUserNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
