package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classifieds-backend/internal/domains/ad"
	"classifieds-backend/internal/domains/ad/service"
	"classifieds-backend/internal/domains/category"
	"classifieds-backend/internal/domains/user"
	"classifieds-backend/internal/infrastructure/storage"
	"classifieds-backend/internal/mocks"
	"classifieds-backend/internal/shared/pagination"
)

type fixture struct {
	store    *mocks.Store
	images   *mocks.ImageStore
	queue    *mocks.Queue
	svc      ad.Service
	alice    user.User
	bob      user.User
	sports   category.Category
	vehicles category.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  mocks.NewStore(),
		images: mocks.NewImageStore(),
		queue:  &mocks.Queue{},
	}
	f.alice = f.store.AddUser("alice", "Alice", "Smith")
	f.bob = f.store.AddUser("bob", "Bob", "")
	f.sports = f.store.AddCategory("Sports")
	f.vehicles = f.store.AddCategory("Vehicles")

	f.svc = service.NewAdService(
		f.store.Ads(),
		f.store.Users(),
		f.store.Categories(),
		f.images,
		storage.NewImageProcessor(5*1024*1024),
		f.queue,
	)
	return f
}

func (f *fixture) seedAd(t *testing.T, name string, price int64) ad.Ad {
	t.Helper()
	return f.store.AddAd(ad.Ad{
		Name:       name,
		AuthorID:   f.alice.ID,
		Price:      decimal.NewFromInt(price),
		CategoryID: f.sports.ID,
	})
}

func ptr[T any](v T) *T { return &v }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// ════════════════════════════════════════════════════════════════
// Create
// ════════════════════════════════════════════════════════════════

func TestCreate_ExampleBody(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Create(context.Background(), ad.CreateAdRequest{
		Name:        "Bike",
		Username:    "alice",
		Price:       dec("100"),
		Description: ptr("Good"),
		IsPublished: ptr(false),
		Category:    "Sports",
	})
	require.NoError(t, err)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": `+jsonInt(resp.ID)+`,
		"name": "Bike",
		"author": "alice",
		"price": 100,
		"description": "Good",
		"is_published": false,
		"category": "Sports",
		"image": null
	}`, string(data))
}

func TestCreate_Defaults(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Create(context.Background(), ad.CreateAdRequest{
		Name:     "Skis",
		Username: "alice",
		Price:    dec("0"),
		Category: "Sports",
	})
	require.NoError(t, err)

	assert.Equal(t, "", resp.Description)
	assert.False(t, resp.IsPublished)
	assert.Nil(t, resp.Image)
}

func TestCreate_WithImageKey(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Create(context.Background(), ad.CreateAdRequest{
		Name:     "Skis",
		Username: "alice",
		Price:    dec("10"),
		Category: "Sports",
		Image:    ptr("legacy/skis.jpg"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Image)
	assert.Equal(t, "/media/legacy/skis.jpg", *resp.Image)
}

func TestCreate_RejectsUploadedImageKey(t *testing.T) {
	f := newFixture(t)
	owner := f.seedAd(t, "Bike", 100)
	uploaded, err := f.svc.UploadImage(context.Background(), owner.ID, pngBytes(t, 8, 8))
	require.NoError(t, err)
	ownerKey := strings.TrimPrefix(uploaded.Image, "/media/")

	for _, key := range []string{ownerKey, "/" + ownerKey, ad.ImageDir(owner.ID + 1) + "guess.jpg"} {
		_, err := f.svc.Create(context.Background(), ad.CreateAdRequest{
			Name:     "Copy",
			Username: "alice",
			Price:    dec("1"),
			Category: "Sports",
			Image:    ptr(key),
		})

		var verrs validation.Errors
		require.ErrorAs(t, err, &verrs, key)
		assert.Contains(t, verrs, "image")
	}
	assert.Equal(t, 1, f.store.AdCount())
	assert.True(t, f.images.Has(ownerKey))
}

func TestCreate_UnresolvedReferences(t *testing.T) {
	tests := []struct {
		name     string
		username string
		category string
		wantErr  error
	}{
		{"unknown username", "nobody", "Sports", user.ErrUserNotFound},
		{"unknown category", "alice", "Cooking", category.ErrCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Create(context.Background(), ad.CreateAdRequest{
				Name:     "Bike",
				Username: tt.username,
				Price:    dec("100"),
				Category: tt.category,
			})

			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 404, ad.ToHTTPStatus(err))
			assert.Equal(t, 0, f.store.AdCount(), "nothing may be persisted")
		})
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name      string
		req       ad.CreateAdRequest
		wantField string
	}{
		{"missing name", ad.CreateAdRequest{Username: "alice", Price: dec("1"), Category: "Sports"}, "name"},
		{"blank name", ad.CreateAdRequest{Name: "   ", Username: "alice", Price: dec("1"), Category: "Sports"}, "name"},
		{"missing username", ad.CreateAdRequest{Name: "Bike", Price: dec("1"), Category: "Sports"}, "username"},
		{"missing price", ad.CreateAdRequest{Name: "Bike", Username: "alice", Category: "Sports"}, "price"},
		{"negative price", ad.CreateAdRequest{Name: "Bike", Username: "alice", Price: dec("-1"), Category: "Sports"}, "price"},
		{"too precise price", ad.CreateAdRequest{Name: "Bike", Username: "alice", Price: dec("1.005"), Category: "Sports"}, "price"},
		{"missing category", ad.CreateAdRequest{Name: "Bike", Username: "alice", Price: dec("1")}, "category"},
		{"long description", ad.CreateAdRequest{Name: "Bike", Username: "alice", Price: dec("1"), Category: "Sports", Description: ptr(strings.Repeat("x", 2001))}, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Create(context.Background(), tt.req)

			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, tt.wantField)
			assert.Equal(t, 0, f.store.AdCount())
		})
	}
}

func TestCreateThenDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, ad.CreateAdRequest{
		Name:        "Велосипед",
		Username:    "alice",
		Price:       dec("149.90"),
		Description: ptr("почти новый"),
		IsPublished: ptr(true),
		Category:    "Sports",
	})
	require.NoError(t, err)

	detail, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.Name, detail.Name)
	assert.True(t, decimal.Decimal(created.Price).Equal(decimal.Decimal(detail.Price)))
	assert.Equal(t, created.Description, detail.Description)
	assert.Equal(t, "Sports", detail.Category)
	assert.Equal(t, "Alice Smith", detail.Author)
	assert.True(t, detail.IsPublished)
	assert.Nil(t, detail.Image)
}

func TestGetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, ad.ErrAdNotFound)
}

// ════════════════════════════════════════════════════════════════
// List
// ════════════════════════════════════════════════════════════════

func TestList_Pagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 25; i++ {
		f.seedAd(t, "ad", int64(i))
	}
	p := pagination.New(10)

	first, err := f.svc.List(context.Background(), ad.AdFilter{}, p.Parse("1"))
	require.NoError(t, err)
	assert.EqualValues(t, 25, first.Total)
	assert.Equal(t, 3, first.NumPages)
	assert.Len(t, first.Items, 10)

	last, err := f.svc.List(context.Background(), ad.AdFilter{}, p.Parse("3"))
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)

	beyond, err := f.svc.List(context.Background(), ad.AdFilter{}, p.Parse("13"))
	require.NoError(t, err)
	assert.EqualValues(t, 25, beyond.Total)
	assert.Equal(t, 3, beyond.NumPages)
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
}

func TestList_HugePageIsEmptyNotError(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.seedAd(t, "ad", int64(i))
	}

	page, err := f.svc.List(context.Background(), ad.AdFilter{}, pagination.New(10).Parse("922337203685477582"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 1, page.NumPages)
	assert.Empty(t, page.Items)
}

func TestList_Empty(t *testing.T) {
	f := newFixture(t)

	page, err := f.svc.List(context.Background(), ad.AdFilter{}, pagination.New(10).Parse(""))
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.Total)
	assert.Equal(t, 1, page.NumPages)
	assert.Empty(t, page.Items)
}

func TestList_OrderAndShape(t *testing.T) {
	f := newFixture(t)
	cheap := f.seedAd(t, "cheap", 5)
	tieA := f.seedAd(t, "tie-a", 50)
	tieB := f.seedAd(t, "tie-b", 50)
	pricey := f.seedAd(t, "pricey", 500)

	page, err := f.svc.List(context.Background(), ad.AdFilter{}, pagination.New(10).Parse("1"))
	require.NoError(t, err)

	ids := make([]int64, len(page.Items))
	for i, item := range page.Items {
		ids[i] = item.ID
	}
	assert.Equal(t, []int64{pricey.ID, tieA.ID, tieB.ID, cheap.ID}, ids)

	first := page.Items[0]
	assert.Equal(t, "pricey", first.Name)
	assert.Equal(t, f.alice.ID, first.AuthorID)
	assert.Equal(t, "Alice", first.Author)
	assert.Equal(t, f.sports.ID, first.CategoryID)
}

func TestList_Filters(t *testing.T) {
	f := newFixture(t)
	f.seedAd(t, "Red bike", 100)
	f.seedAd(t, "Blue BIKE", 300)
	f.store.AddAd(ad.Ad{Name: "Car", AuthorID: f.bob.ID, Price: decimal.NewFromInt(5000), CategoryID: f.vehicles.ID})

	tests := []struct {
		name   string
		filter ad.AdFilter
		want   []string
	}{
		{"by category", ad.AdFilter{CategoryIDs: []int64{f.vehicles.ID}}, []string{"Car"}},
		{"by text", ad.AdFilter{Text: "bike"}, []string{"Blue BIKE", "Red bike"}},
		{"by price range", ad.AdFilter{PriceFrom: dec("100"), PriceTo: dec("300")}, []string{"Blue BIKE", "Red bike"}},
		{"price from only", ad.AdFilter{PriceFrom: dec("301")}, []string{"Car"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.List(context.Background(), tt.filter, pagination.New(10).Parse("1"))
			require.NoError(t, err)

			var names []string
			for _, item := range page.Items {
				names = append(names, item.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.EqualValues(t, len(tt.want), page.Total)
		})
	}
}

// ════════════════════════════════════════════════════════════════
// Update / Patch
// ════════════════════════════════════════════════════════════════

func TestUpdate_ResolvesByUsernameAndCategoryName(t *testing.T) {
	f := newFixture(t)
	existing := f.seedAd(t, "Bike", 100)
	key := "ads/1/photo.jpg"
	_, err := f.store.Ads().SetImage(context.Background(), existing.ID, key)
	require.NoError(t, err)

	resp, err := f.svc.Update(context.Background(), existing.ID, ad.UpdateAdRequest{
		Name:        ptr("Car"),
		Username:    ptr("bob"),
		Price:       dec("2500"),
		Description: ptr(""),
		IsPublished: ptr(true),
		Category:    ptr("Vehicles"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Car", resp.Name)
	assert.Equal(t, "bob", resp.Author)
	assert.Equal(t, "Vehicles", resp.Category)
	assert.True(t, resp.IsPublished)
	require.NotNil(t, resp.Image, "PUT keeps the image")
	assert.Equal(t, "/media/"+key, *resp.Image)
}

func TestUpdate_MissingFields(t *testing.T) {
	f := newFixture(t)
	existing := f.seedAd(t, "Bike", 100)

	_, err := f.svc.Update(context.Background(), existing.ID, ad.UpdateAdRequest{
		Name:     ptr("Car"),
		Username: ptr("bob"),
		Price:    dec("1"),
		Category: ptr("Vehicles"),
	})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "description")
	assert.Contains(t, verrs, "is_published")

	stored, _ := f.store.Ad(existing.ID)
	assert.Equal(t, "Bike", stored.Name)
}

func TestUpdate_UnknownReferences(t *testing.T) {
	f := newFixture(t)
	existing := f.seedAd(t, "Bike", 100)

	_, err := f.svc.Update(context.Background(), existing.ID, ad.UpdateAdRequest{
		Name:        ptr("Car"),
		Username:    ptr("ghost"),
		Price:       dec("1"),
		Description: ptr(""),
		IsPublished: ptr(false),
		Category:    ptr("Vehicles"),
	})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUpdate_UnknownAd(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), 404, ad.UpdateAdRequest{
		Name:        ptr("Car"),
		Username:    ptr("bob"),
		Price:       dec("1"),
		Description: ptr(""),
		IsPublished: ptr(false),
		Category:    ptr("Vehicles"),
	})
	assert.ErrorIs(t, err, ad.ErrAdNotFound)
}

func patchRequest(t *testing.T, body string) ad.PatchAdRequest {
	t.Helper()
	var req ad.PatchAdRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestPatch_OnlyPrice(t *testing.T) {
	f := newFixture(t)
	existing := f.store.AddAd(ad.Ad{
		Name:        "Bike",
		AuthorID:    f.alice.ID,
		Price:       decimal.NewFromInt(100),
		Description: "Good",
		IsPublished: true,
		CategoryID:  f.sports.ID,
	})

	resp, err := f.svc.Patch(context.Background(), existing.ID, patchRequest(t, `{"price": 75.5}`))
	require.NoError(t, err)

	stored, _ := f.store.Ad(existing.ID)
	assert.True(t, decimal.RequireFromString("75.5").Equal(stored.Price))
	assert.Equal(t, "Bike", stored.Name)
	assert.Equal(t, "Good", stored.Description)
	assert.True(t, stored.IsPublished)
	assert.Equal(t, f.alice.ID, stored.AuthorID)
	assert.Equal(t, f.sports.ID, stored.CategoryID)
	assert.Equal(t, "alice", resp.Author)
}

func TestPatch_FalsyValuesAreApplied(t *testing.T) {
	f := newFixture(t)
	existing := f.store.AddAd(ad.Ad{
		Name:        "Bike",
		AuthorID:    f.alice.ID,
		Price:       decimal.NewFromInt(100),
		Description: "Good",
		IsPublished: true,
		CategoryID:  f.sports.ID,
	})

	_, err := f.svc.Patch(context.Background(), existing.ID,
		patchRequest(t, `{"is_published": false, "description": "", "price": 0}`))
	require.NoError(t, err)

	stored, _ := f.store.Ad(existing.ID)
	assert.False(t, stored.IsPublished)
	assert.Equal(t, "", stored.Description)
	assert.True(t, stored.Price.IsZero())
}

func TestPatch_ResolvesIDs(t *testing.T) {
	f := newFixture(t)
	existing := f.seedAd(t, "Bike", 100)

	body := `{"author": ` + jsonInt(f.bob.ID) + `, "category": ` + jsonInt(f.vehicles.ID) + `}`
	resp, err := f.svc.Patch(context.Background(), existing.ID, patchRequest(t, body))
	require.NoError(t, err)

	assert.Equal(t, "bob", resp.Author)
	assert.Equal(t, "Vehicles", resp.Category)
}

func TestPatch_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   error
		wantField string
	}{
		{"null field", `{"name": null}`, nil, "name"},
		{"empty name", `{"name": ""}`, nil, "name"},
		{"zero author", `{"author": 0}`, nil, "author"},
		{"negative price", `{"price": -3}`, nil, "price"},
		{"unknown author", `{"author": 9999}`, user.ErrUserNotFound, ""},
		{"unknown category", `{"category": 9999}`, category.ErrCategoryNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			existing := f.seedAd(t, "Bike", 100)

			_, err := f.svc.Patch(context.Background(), existing.ID, patchRequest(t, tt.body))
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				var verrs validation.Errors
				require.ErrorAs(t, err, &verrs)
				assert.Contains(t, verrs, tt.wantField)
			}

			stored, _ := f.store.Ad(existing.ID)
			assert.Equal(t, "Bike", stored.Name)
		})
	}
}

func TestPatch_UnknownAdWinsOverUnknownRefs(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Patch(context.Background(), 4242, patchRequest(t, `{"author": 9999, "category": 9999}`))
	assert.ErrorIs(t, err, ad.ErrAdNotFound)
}

func TestPatch_EmptyBodyReturnsCurrent(t *testing.T) {
	f := newFixture(t)
	existing := f.seedAd(t, "Bike", 100)

	resp, err := f.svc.Patch(context.Background(), existing.ID, patchRequest(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, "Bike", resp.Name)

	_, err = f.svc.Patch(context.Background(), 4242, patchRequest(t, `{}`))
	assert.ErrorIs(t, err, ad.ErrAdNotFound)
}

// ════════════════════════════════════════════════════════════════
// Delete
// ════════════════════════════════════════════════════════════════

func TestDelete_ThenDetailIsNotFound(t *testing.T) {
	f := newFixture(t)
	existing := f.seedAd(t, "Bike", 100)
	key := ad.ImageDir(existing.ID) + "a.jpg"
	_, err := f.store.Ads().SetImage(context.Background(), existing.ID, key)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), existing.ID))

	_, err = f.svc.GetByID(context.Background(), existing.ID)
	assert.ErrorIs(t, err, ad.ErrAdNotFound)

	enqueued := f.queue.Enqueued()
	require.Len(t, enqueued, 1)
	assert.Equal(t, key, enqueued[0].Key)
	assert.Equal(t, ad.ImageDir(existing.ID), enqueued[0].Prefix)
}

func TestDelete_UnknownAd(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Delete(context.Background(), 77)
	assert.ErrorIs(t, err, ad.ErrAdNotFound)
	assert.Empty(t, f.queue.Enqueued())
}

// ════════════════════════════════════════════════════════════════
// UploadImage
// ════════════════════════════════════════════════════════════════

func jsonInt(v int64) string { return strconv.FormatInt(v, 10) }

func TestUploadImage_ReplacesAndSchedulesOldKey(t *testing.T) {
	f := newFixture(t)
	existing := f.seedAd(t, "Bike", 100)
	oldKey := ad.ImageDir(existing.ID) + "old.jpg"
	f.images.Put(oldKey, []byte("old"), time.Now())
	_, err := f.store.Ads().SetImage(context.Background(), existing.ID, oldKey)
	require.NoError(t, err)

	resp, err := f.svc.UploadImage(context.Background(), existing.ID, pngBytes(t, 64, 48))
	require.NoError(t, err)

	assert.Equal(t, "Bike", resp.Name)
	assert.True(t, strings.HasPrefix(resp.Image, "/media/"+ad.ImageDir(existing.ID)), resp.Image)
	assert.True(t, strings.HasSuffix(resp.Image, ".jpg"), resp.Image)

	stored, _ := f.store.Ad(existing.ID)
	require.NotNil(t, stored.Image)
	assert.NotEqual(t, oldKey, *stored.Image)
	assert.True(t, f.images.Has(*stored.Image))

	enqueued := f.queue.Enqueued()
	require.Len(t, enqueued, 1)
	assert.Equal(t, oldKey, enqueued[0].Key)
	assert.Empty(t, enqueued[0].Prefix)
}

func TestUploadImage_QueueDownDeletesInline(t *testing.T) {
	f := newFixture(t)
	f.queue.Err = mocks.ErrQueueDown
	existing := f.seedAd(t, "Bike", 100)
	oldKey := ad.ImageDir(existing.ID) + "old.jpg"
	f.images.Put(oldKey, []byte("old"), time.Now())
	_, err := f.store.Ads().SetImage(context.Background(), existing.ID, oldKey)
	require.NoError(t, err)

	_, err = f.svc.UploadImage(context.Background(), existing.ID, pngBytes(t, 10, 10))
	require.NoError(t, err)

	assert.False(t, f.images.Has(oldKey))
	assert.Len(t, f.images.Keys(), 1)
}

func TestDelete_NoQueueDeletesInline(t *testing.T) {
	f := newFixture(t)
	f.svc = service.NewAdService(f.store.Ads(), f.store.Users(), f.store.Categories(),
		f.images, storage.NewImageProcessor(0), nil)
	existing := f.seedAd(t, "Bike", 100)
	f.images.Put(ad.ImageDir(existing.ID)+"stale.jpg", []byte("x"), time.Now())

	require.NoError(t, f.svc.Delete(context.Background(), existing.ID))
	assert.Empty(t, f.images.Keys())
}

func TestDelete_KeepsImageOwnedByAnotherAd(t *testing.T) {
	f := newFixture(t)
	f.svc = service.NewAdService(f.store.Ads(), f.store.Users(), f.store.Categories(),
		f.images, storage.NewImageProcessor(5*1024*1024), nil)

	owner := f.seedAd(t, "Bike", 100)
	uploaded, err := f.svc.UploadImage(context.Background(), owner.ID, pngBytes(t, 8, 8))
	require.NoError(t, err)
	ownerKey := strings.TrimPrefix(uploaded.Image, "/media/")

	// một ad khác trỏ tới cùng object (dữ liệu cũ)
	other := f.seedAd(t, "Copy", 1)
	_, err = f.store.Ads().SetImage(context.Background(), other.ID, ownerKey)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), other.ID))
	assert.True(t, f.images.Has(ownerKey))

	_, err = f.svc.UploadImage(context.Background(), owner.ID, pngBytes(t, 8, 8))
	require.NoError(t, err)
	assert.False(t, f.images.Has(ownerKey))
}

func TestDelete_QueuesOnlyOwnedKey(t *testing.T) {
	f := newFixture(t)
	existing := f.seedAd(t, "Bike", 100)
	_, err := f.store.Ads().SetImage(context.Background(), existing.ID, "ads/999/other.jpg")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), existing.ID))

	enqueued := f.queue.Enqueued()
	require.Len(t, enqueued, 1)
	assert.Empty(t, enqueued[0].Key)
	assert.Equal(t, ad.ImageDir(existing.ID), enqueued[0].Prefix)
}

func TestUploadImage_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		adID    func(f *fixture) int64
		wantErr error
	}{
		{"empty body", nil, func(f *fixture) int64 { return f.seedAd(t, "Bike", 1).ID }, ad.ErrMissingImage},
		{"not an image", []byte("definitely not a picture"), func(f *fixture) int64 { return f.seedAd(t, "Bike", 1).ID }, ad.ErrInvalidImage},
		{"unknown ad", pngBytes(t, 4, 4), func(*fixture) int64 { return 999 }, ad.ErrAdNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := tt.adID(f)

			_, err := f.svc.UploadImage(context.Background(), id, tt.data)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.images.Keys(), "nothing may be uploaded")
		})
	}
}

func TestUploadImage_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.images.UploadErr = errors.New("bucket offline")
	existing := f.seedAd(t, "Bike", 100)

	_, err := f.svc.UploadImage(context.Background(), existing.ID, pngBytes(t, 4, 4))
	require.Error(t, err)
	assert.Equal(t, 500, ad.ToHTTPStatus(err))

	stored, _ := f.store.Ad(existing.ID)
	assert.Nil(t, stored.Image)
}
