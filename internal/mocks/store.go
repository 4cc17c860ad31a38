// Package mocks provides in-memory stand-ins for repositories, storage and
// queue used by service and handler tests.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"classifieds-backend/internal/domains/ad"
	"classifieds-backend/internal/domains/category"
	"classifieds-backend/internal/domains/user"
	"classifieds-backend/internal/shared/pagination"
)

// Store keeps users, categories and ads together so reference checks
// (FK, category in use) behave like the database.
type Store struct {
	mu         sync.Mutex
	users      map[int64]user.User
	categories map[int64]category.Category
	ads        map[int64]ad.Ad
	nextID     int64

	// Err, when set, is returned by every ad repository call.
	Err error
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]user.User),
		categories: make(map[int64]category.Category),
		ads:        make(map[int64]ad.Ad),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddUser seeds a user and returns it with its id.
func (s *Store) AddUser(username, first, last string) user.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := user.User{ID: s.id(), Username: username, FirstName: first, LastName: last}
	s.users[u.ID] = u
	return u
}

// AddCategory seeds a category.
func (s *Store) AddCategory(name string) category.Category {
	c, _ := s.Categories().Create(context.Background(), name)
	return *c
}

// AddAd seeds an ad directly, bypassing reference checks.
func (s *Store) AddAd(a ad.Ad) ad.Ad {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.id()
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.ads[a.ID] = a
	return a
}

// Ad returns the stored ad as-is.
func (s *Store) Ad(id int64) (ad.Ad, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.ads[id]
	return a, ok
}

func (s *Store) AdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ads)
}

func (s *Store) Users() user.Repository         { return userRepo{s} }
func (s *Store) Categories() category.Repository { return categoryRepo{s} }
func (s *Store) Ads() ad.Repository              { return adRepo{s} }

// ════════════════════════════════════════════════════════════════
// users
// ════════════════════════════════════════════════════════════════

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

// ════════════════════════════════════════════════════════════════
// categories
// ════════════════════════════════════════════════════════════════

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(_ context.Context, name string) (*category.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if c.Name == name {
			return nil, category.ErrDuplicateName
		}
	}
	now := time.Now()
	c := category.Category{ID: r.s.id(), Name: name, CreatedAt: now, UpdatedAt: now}
	r.s.categories[c.ID] = c
	return &c, nil
}

func (r categoryRepo) GetByID(_ context.Context, id int64) (*category.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, category.ErrCategoryNotFound
	}
	return &c, nil
}

func (r categoryRepo) GetByName(_ context.Context, name string) (*category.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.categories {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, category.ErrCategoryNotFound
}

func (r categoryRepo) List(_ context.Context, limit, offset int) ([]category.Category, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := make([]category.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})
	return window(all, limit, offset), int64(len(all)), nil
}

func (r categoryRepo) Update(_ context.Context, id int64, name string) (*category.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, category.ErrCategoryNotFound
	}
	for _, other := range r.s.categories {
		if other.ID != id && other.Name == name {
			return nil, category.ErrDuplicateName
		}
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	r.s.categories[id] = c
	return &c, nil
}

func (r categoryRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.categories[id]; !ok {
		return category.ErrCategoryNotFound
	}
	for _, a := range r.s.ads {
		if a.CategoryID == id {
			return category.ErrCategoryInUse
		}
	}
	delete(r.s.categories, id)
	return nil
}

// ════════════════════════════════════════════════════════════════
// ads
// ════════════════════════════════════════════════════════════════

type adRepo struct{ s *Store }

func (r adRepo) Create(_ context.Context, a *ad.Ad) (*ad.Ad, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.Err != nil {
		return nil, r.s.Err
	}
	if err := r.s.checkRefs(a.AuthorID, a.CategoryID); err != nil {
		return nil, err
	}

	created := *a
	created.ID = r.s.id()
	now := time.Now()
	created.CreatedAt, created.UpdatedAt = now, now
	r.s.ads[created.ID] = created
	return &created, nil
}

func (r adRepo) GetByID(_ context.Context, id int64) (*ad.AdDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.Err != nil {
		return nil, r.s.Err
	}
	a, ok := r.s.ads[id]
	if !ok {
		return nil, ad.ErrAdNotFound
	}
	d := r.s.detail(a)
	return &d, nil
}

func (r adRepo) List(_ context.Context, filter ad.AdFilter, limit, offset int) ([]ad.AdDetail, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}

	var matched []ad.AdDetail
	for _, a := range r.s.ads {
		if matches(a, filter) {
			matched = append(matched, r.s.detail(a))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if c := matched[i].Price.Cmp(matched[j].Price); c != 0 {
			return c > 0
		}
		return matched[i].ID < matched[j].ID
	})
	return window(matched, limit, offset), int64(len(matched)), nil
}

func (r adRepo) Update(_ context.Context, a *ad.Ad) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.Err != nil {
		return r.s.Err
	}
	current, ok := r.s.ads[a.ID]
	if !ok {
		return ad.ErrAdNotFound
	}
	if err := r.s.checkRefs(a.AuthorID, a.CategoryID); err != nil {
		return err
	}

	current.Name = a.Name
	current.AuthorID = a.AuthorID
	current.Price = a.Price
	current.Description = a.Description
	current.IsPublished = a.IsPublished
	current.CategoryID = a.CategoryID
	current.UpdatedAt = time.Now()
	r.s.ads[a.ID] = current
	return nil
}

func (r adRepo) UpdateFields(_ context.Context, id int64, patch ad.AdPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.Err != nil {
		return r.s.Err
	}
	a, ok := r.s.ads[id]
	if !ok {
		return ad.ErrAdNotFound
	}
	if patch.IsEmpty() {
		return nil
	}

	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.AuthorID != nil {
		a.AuthorID = *patch.AuthorID
	}
	if patch.Price != nil {
		a.Price = *patch.Price
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.IsPublished != nil {
		a.IsPublished = *patch.IsPublished
	}
	if patch.CategoryID != nil {
		a.CategoryID = *patch.CategoryID
	}
	if err := r.s.checkRefs(a.AuthorID, a.CategoryID); err != nil {
		return err
	}
	a.UpdatedAt = time.Now()
	r.s.ads[id] = a
	return nil
}

func (r adRepo) SetImage(_ context.Context, id int64, key string) (*string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.Err != nil {
		return nil, r.s.Err
	}
	a, ok := r.s.ads[id]
	if !ok {
		return nil, ad.ErrAdNotFound
	}
	previous := a.Image
	a.Image = &key
	r.s.ads[id] = a
	return previous, nil
}

func (r adRepo) Delete(_ context.Context, id int64) (*string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.Err != nil {
		return nil, r.s.Err
	}
	a, ok := r.s.ads[id]
	if !ok {
		return nil, ad.ErrAdNotFound
	}
	delete(r.s.ads, id)
	return a.Image, nil
}

func (r adRepo) ReferencedImages(_ context.Context, keys []string) (map[string]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	referenced := make(map[string]bool)
	for _, key := range keys {
		for _, a := range r.s.ads {
			if a.Image != nil && *a.Image == key {
				referenced[key] = true
				break
			}
		}
	}
	return referenced, nil
}

// caller holds mu
func (s *Store) checkRefs(authorID, categoryID int64) error {
	if _, ok := s.users[authorID]; !ok {
		return user.ErrUserNotFound
	}
	if _, ok := s.categories[categoryID]; !ok {
		return category.ErrCategoryNotFound
	}
	return nil
}

// caller holds mu
func (s *Store) detail(a ad.Ad) ad.AdDetail {
	u := s.users[a.AuthorID]
	c := s.categories[a.CategoryID]
	return ad.AdDetail{
		Ad:              a,
		AuthorUsername:  u.Username,
		AuthorFirstName: u.FirstName,
		AuthorLastName:  u.LastName,
		CategoryName:    c.Name,
	}
}

func matches(a ad.Ad, f ad.AdFilter) bool {
	if len(f.CategoryIDs) > 0 {
		found := false
		for _, id := range f.CategoryIDs {
			if a.CategoryID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Text != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(f.Text)) {
		return false
	}
	if f.PriceFrom != nil && a.Price.LessThan(*f.PriceFrom) {
		return false
	}
	if f.PriceTo != nil && a.Price.GreaterThan(*f.PriceTo) {
		return false
	}
	return true
}

func window[T any](items []T, limit, offset int) []T {
	if pagination.PastEnd(offset, int64(len(items))) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) || end < offset {
		end = len(items)
	}
	return items[offset:end]
}
