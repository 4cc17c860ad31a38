package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"classifieds-backend/internal/domains/ad"
	"classifieds-backend/internal/domains/category"
	"classifieds-backend/internal/domains/user"
	"classifieds-backend/internal/shared/pagination"
	"classifieds-backend/internal/shared/utils"
	"classifieds-backend/pkg/database"
)

const pgForeignKeyViolation = "23503"

const detailColumns = `
	a.id, a.name, a.author_id, a.price, a.description, a.is_published,
	a.category_id, a.image, a.created_at, a.updated_at,
	u.username, u.first_name, u.last_name, c.name`

const detailJoins = `
	FROM ads a
	JOIN users u ON u.id = a.author_id
	JOIN categories c ON c.id = a.category_id`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) ad.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, a *ad.Ad) (*ad.Ad, error) {
	query := `
		INSERT INTO ads (name, author_id, price, description, is_published, category_id, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	created := *a
	err := r.pool.QueryRow(ctx, query,
		a.Name,
		a.AuthorID,
		a.Price,
		a.Description,
		a.IsPublished,
		a.CategoryID,
		a.Image,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if refErr := mapReferenceError(err); refErr != nil {
			return nil, refErr
		}
		return nil, fmt.Errorf("failed to create ad: %w", err)
	}

	return &created, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*ad.AdDetail, error) {
	query := `SELECT ` + detailColumns + detailJoins + ` WHERE a.id = $1`

	d, err := scanDetail(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ad.ErrAdNotFound
		}
		return nil, fmt.Errorf("failed to get ad: %w", err)
	}
	return d, nil
}

func (r *postgresRepository) List(ctx context.Context, filter ad.AdFilter, limit, offset int) ([]ad.AdDetail, int64, error) {
	var args utils.Args
	where := buildWhere(filter, &args)

	var total int64
	countQuery := `SELECT COUNT(*) FROM ads a` + where
	if err := r.pool.QueryRow(ctx, countQuery, args.Values()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ads: %w", err)
	}

	// Trang vượt quá num_pages: trả về rỗng, không query thêm
	if total == 0 || pagination.PastEnd(offset, total) {
		return []ad.AdDetail{}, total, nil
	}

	query := `SELECT ` + detailColumns + detailJoins + where +
		` ORDER BY a.price DESC, a.id ASC` +
		` LIMIT ` + args.Add(limit) + ` OFFSET ` + args.Add(offset)

	rows, err := r.pool.Query(ctx, query, args.Values()...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ads: %w", err)
	}
	defer rows.Close()

	items := make([]ad.AdDetail, 0, limit)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan ad: %w", err)
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate ads: %w", err)
	}

	return items, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, a *ad.Ad) error {
	query := `
		UPDATE ads
		SET name = $2, author_id = $3, price = $4, description = $5,
		    is_published = $6, category_id = $7, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		a.ID,
		a.Name,
		a.AuthorID,
		a.Price,
		a.Description,
		a.IsPublished,
		a.CategoryID,
	)
	if err != nil {
		if refErr := mapReferenceError(err); refErr != nil {
			return refErr
		}
		return fmt.Errorf("failed to update ad: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ad.ErrAdNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateFields(ctx context.Context, id int64, patch ad.AdPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	var args utils.Args
	sets := make([]string, 0, 7)
	if patch.Name != nil {
		sets = append(sets, "name = "+args.Add(*patch.Name))
	}
	if patch.AuthorID != nil {
		sets = append(sets, "author_id = "+args.Add(*patch.AuthorID))
	}
	if patch.Price != nil {
		sets = append(sets, "price = "+args.Add(*patch.Price))
	}
	if patch.Description != nil {
		sets = append(sets, "description = "+args.Add(*patch.Description))
	}
	if patch.IsPublished != nil {
		sets = append(sets, "is_published = "+args.Add(*patch.IsPublished))
	}
	if patch.CategoryID != nil {
		sets = append(sets, "category_id = "+args.Add(*patch.CategoryID))
	}
	sets = append(sets, "updated_at = NOW()")

	query := `UPDATE ads SET ` + strings.Join(sets, ", ") + ` WHERE id = ` + args.Add(id)

	tag, err := r.pool.Exec(ctx, query, args.Values()...)
	if err != nil {
		if refErr := mapReferenceError(err); refErr != nil {
			return refErr
		}
		return fmt.Errorf("failed to patch ad: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ad.ErrAdNotFound
	}
	return nil
}

// SetImage: SELECT ... FOR UPDATE giữ row lock nên key cũ trả về đúng là key bị thay
func (r *postgresRepository) SetImage(ctx context.Context, id int64, key string) (*string, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*string, error) {
		var previous *string
		err := tx.QueryRow(ctx, `SELECT image FROM ads WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ad.ErrAdNotFound
			}
			return nil, fmt.Errorf("failed to lock ad: %w", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE ads SET image = $2, updated_at = NOW() WHERE id = $1`, id, key); err != nil {
			return nil, fmt.Errorf("failed to set ad image: %w", err)
		}
		return previous, nil
	})
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) (*string, error) {
	var image *string
	err := r.pool.QueryRow(ctx, `DELETE FROM ads WHERE id = $1 RETURNING image`, id).Scan(&image)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ad.ErrAdNotFound
		}
		return nil, fmt.Errorf("failed to delete ad: %w", err)
	}
	return image, nil
}

func (r *postgresRepository) ReferencedImages(ctx context.Context, keys []string) (map[string]bool, error) {
	referenced := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return referenced, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT image FROM ads WHERE image = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to query referenced images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan image key: %w", err)
		}
		referenced[key] = true
	}
	return referenced, rows.Err()
}

func buildWhere(filter ad.AdFilter, args *utils.Args) string {
	var conditions []string

	if len(filter.CategoryIDs) > 0 {
		conditions = append(conditions, "a.category_id = ANY("+args.Add(filter.CategoryIDs)+")")
	}
	if filter.Text != "" {
		conditions = append(conditions, "a.name ILIKE "+args.Add("%"+utils.EscapeLike(filter.Text)+"%"))
	}
	if filter.PriceFrom != nil {
		conditions = append(conditions, "a.price >= "+args.Add(*filter.PriceFrom))
	}
	if filter.PriceTo != nil {
		conditions = append(conditions, "a.price <= "+args.Add(*filter.PriceTo))
	}

	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + utils.JoinWithAnd(conditions)
}

func scanDetail(row pgx.Row) (*ad.AdDetail, error) {
	var d ad.AdDetail
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.AuthorID,
		&d.Price,
		&d.Description,
		&d.IsPublished,
		&d.CategoryID,
		&d.Image,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.AuthorUsername,
		&d.AuthorFirstName,
		&d.AuthorLastName,
		&d.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// mapReferenceError: FK violation nghĩa là author/category đã bị xóa giữa lúc resolve và ghi
func mapReferenceError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgForeignKeyViolation {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "author"):
		return user.ErrUserNotFound
	case strings.Contains(pgErr.ConstraintName, "category"):
		return category.ErrCategoryNotFound
	default:
		return nil
	}
}
