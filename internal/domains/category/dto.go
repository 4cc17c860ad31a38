package category

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CategoryRequest - POST /cat/create/, PUT|PATCH /cat/:id/update/
type CategoryRequest struct {
	Name string `json:"name"`
}

// Normalize trims surrounding whitespace before validation.
func (r *CategoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r CategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.RuneLength(1, MaxNameLength),
		),
	)
}

type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DeleteResponse - DELETE /cat/:id/delete/
type DeleteResponse struct {
	ID int64 `json:"id"`
}

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		ID:   c.ID,
		Name: c.Name,
	}
}
