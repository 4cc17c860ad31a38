package category

import (
	"context"

	"classifieds-backend/internal/shared/pagination"
)

type Service interface {
	Create(ctx context.Context, req CategoryRequest) (*CategoryResponse, error)
	GetByID(ctx context.Context, id int64) (*CategoryResponse, error)
	List(ctx context.Context, page pagination.Request) (pagination.Page[CategoryResponse], error)
	Update(ctx context.Context, id int64, req CategoryRequest) (*CategoryResponse, error)
	Delete(ctx context.Context, id int64) error
}
