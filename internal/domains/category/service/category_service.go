package service

import (
	"context"

	"classifieds-backend/internal/domains/category"
	"classifieds-backend/internal/shared/pagination"
)

type categoryService struct {
	repo category.Repository
}

func NewCategoryService(repo category.Repository) category.Service {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, req category.CategoryRequest) (*category.CategoryResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	resp := c.ToResponse()
	return &resp, nil
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*category.CategoryResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := c.ToResponse()
	return &resp, nil
}

func (s *categoryService) List(ctx context.Context, page pagination.Request) (pagination.Page[category.CategoryResponse], error) {
	categories, total, err := s.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return pagination.Page[category.CategoryResponse]{}, err
	}

	items := make([]category.CategoryResponse, len(categories))
	for i := range categories {
		items[i] = categories[i].ToResponse()
	}

	return pagination.NewPage(items, total, page.Limit), nil
}

func (s *categoryService) Update(ctx context.Context, id int64, req category.CategoryRequest) (*category.CategoryResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.Update(ctx, id, req.Name)
	if err != nil {
		return nil, err
	}

	resp := c.ToResponse()
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
