package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"classifieds-backend/internal/domains/category"
	"classifieds-backend/internal/shared/pagination"
	"classifieds-backend/pkg/cache"
)

const (
	categoryCacheKeyPrefix = "category:"
	categoryNameKeyPrefix  = "category:name:"
	cacheTTL               = 30 * time.Minute

	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

// NewPostgresRepository creates a category repository. cache may be nil.
func NewPostgresRepository(pool *pgxpool.Pool, c cache.Cache) category.Repository {
	return &postgresRepository{
		pool:  pool,
		cache: c,
	}
}

func (r *postgresRepository) Create(ctx context.Context, name string) (*category.Category, error) {
	query := `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`

	var c category.Category
	err := r.pool.QueryRow(ctx, query, name).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return nil, category.ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &c, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*category.Category, error) {
	return r.getCached(ctx, categoryCacheKeyPrefix+strconv.FormatInt(id, 10), `
		SELECT id, name, created_at, updated_at
		FROM categories
		WHERE id = $1
	`, id)
}

func (r *postgresRepository) GetByName(ctx context.Context, name string) (*category.Category, error) {
	return r.getCached(ctx, categoryNameKeyPrefix+name, `
		SELECT id, name, created_at, updated_at
		FROM categories
		WHERE name = $1
	`, name)
}

func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]category.Category, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	if total == 0 || pagination.PastEnd(offset, total) {
		return []category.Category{}, total, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM categories
		ORDER BY name ASC, id ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]category.Category, 0, limit)
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, id int64, name string) (*category.Category, error) {
	query := `
		UPDATE categories
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`

	var c category.Category
	err := r.pool.QueryRow(ctx, query, id, name).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrCategoryNotFound
		}
		if isPgError(err, pgUniqueViolation) {
			return nil, category.ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	r.invalidateCache(ctx)
	return &c, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return category.ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrCategoryNotFound
	}

	r.invalidateCache(ctx)
	return nil
}

func (r *postgresRepository) getCached(ctx context.Context, key, query string, arg any) (*category.Category, error) {
	var c category.Category

	if r.cache != nil {
		hit, err := r.cache.Get(ctx, key, &c)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("category cache get failed")
		} else if hit {
			return &c, nil
		}
	}

	err := r.pool.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, category.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, c, cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("category cache set failed")
		}
	}

	return &c, nil
}

// invalidateCache: category set nhỏ nên xóa toàn bộ prefix thay vì tính key cũ
func (r *postgresRepository) invalidateCache(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.DeletePattern(ctx, categoryCacheKeyPrefix+"*"); err != nil {
		log.Warn().Err(err).Msg("category cache invalidation failed")
	}
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
