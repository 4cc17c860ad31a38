package ad

import "context"

type Repository interface {
	// Create inserts ad; FK violations map to ErrUserNotFound / ErrCategoryNotFound
	Create(ctx context.Context, ad *Ad) (*Ad, error)

	// GetByID joins author + category; ErrAdNotFound if not exists
	GetByID(ctx context.Context, id int64) (*AdDetail, error)

	// List ordered by price DESC, id ASC
	List(ctx context.Context, filter AdFilter, limit, offset int) ([]AdDetail, int64, error)

	// Update overwrites name, author, price, description, is_published, category
	Update(ctx context.Context, ad *Ad) error

	// UpdateFields writes only the non-nil columns of patch in one statement
	UpdateFields(ctx context.Context, id int64, patch AdPatch) error

	// SetImage replaces the image key inside a transaction and returns the previous key
	SetImage(ctx context.Context, id int64, key string) (previous *string, err error)

	// Delete removes the ad and returns its image key
	Delete(ctx context.Context, id int64) (image *string, err error)

	// ReferencedImages returns the subset of keys still stored on some ad
	ReferencedImages(ctx context.Context, keys []string) (map[string]bool, error)
}
