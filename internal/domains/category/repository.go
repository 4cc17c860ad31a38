package category

import "context"

type Repository interface {
	// Create returns ErrDuplicateName if the name is taken
	Create(ctx context.Context, name string) (*Category, error)

	// GetByID returns ErrCategoryNotFound if not exists
	GetByID(ctx context.Context, id int64) (*Category, error)

	// GetByName matches exactly; used to resolve "category" in ad bodies
	GetByName(ctx context.Context, name string) (*Category, error)

	// List ordered by name, id; returns page + total count
	List(ctx context.Context, limit, offset int) ([]Category, int64, error)

	// Update renames; ErrCategoryNotFound / ErrDuplicateName
	Update(ctx context.Context, id int64, name string) (*Category, error)

	// Delete returns ErrCategoryInUse while ads reference it
	Delete(ctx context.Context, id int64) error
}
