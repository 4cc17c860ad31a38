package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"classifieds-backend/internal/domains/user"
	"classifieds-backend/pkg/cache"
)

const (
	userCacheKeyPrefix     = "user:"
	usernameCacheKeyPrefix = "user:username:"
	cacheTTL               = 10 * time.Minute
)

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

// NewPostgresRepository creates a user repository. cache may be nil.
func NewPostgresRepository(pool *pgxpool.Pool, c cache.Cache) user.Repository {
	return &postgresRepository{
		pool:  pool,
		cache: c,
	}
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.getCached(ctx, userCacheKeyPrefix+strconv.FormatInt(id, 10), `
		SELECT id, username, first_name, last_name
		FROM users
		WHERE id = $1
	`, id)
}

func (r *postgresRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.getCached(ctx, usernameCacheKeyPrefix+username, `
		SELECT id, username, first_name, last_name
		FROM users
		WHERE username = $1
	`, username)
}

// getCached: cache-aside. Cache errors chỉ log, không fail request.
func (r *postgresRepository) getCached(ctx context.Context, key, query string, arg any) (*user.User, error) {
	var u user.User

	if r.cache != nil {
		hit, err := r.cache.Get(ctx, key, &u)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("user cache get failed")
		} else if hit {
			return &u, nil
		}
	}

	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, u, cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("user cache set failed")
		}
	}

	return &u, nil
}
