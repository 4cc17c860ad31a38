package ad

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"classifieds-backend/internal/shared"
)

const (
	maxImageKeyLength = 512
	priceMaxDigits    = 10 // NUMERIC(12,2): 10 chữ số phần nguyên
	priceMaxScale     = 2
)

// ════════════════════════════════════════════════════════════════
// REQUESTS
// ════════════════════════════════════════════════════════════════

// CreateAdRequest - POST /ad/create/
// author và category được resolve theo username / tên category
type CreateAdRequest struct {
	Name        string           `json:"name"`
	Username    string           `json:"username"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	IsPublished *bool            `json:"is_published"`
	Category    string           `json:"category"`
	Image       *string          `json:"image"`
}

func (r CreateAdRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.By(notBlank),
			validation.RuneLength(1, MaxNameLength),
		),
		validation.Field(&r.Username, validation.Required.Error("username is required")),
		validation.Field(&r.Price, validation.Required.Error("price is required"), validation.By(validPrice)),
		validation.Field(&r.Description, validation.RuneLength(0, MaxDescriptionLength)),
		validation.Field(&r.Category, validation.Required.Error("category is required")),
		validation.Field(&r.Image, validation.RuneLength(0, maxImageKeyLength), validation.By(unmanagedImageKey)),
	)
}

// Key dưới ImagePrefix chỉ được cấp qua upload_image, client không tự gán được.
func unmanagedImageKey(value interface{}) error {
	key, ok := value.(*string)
	if !ok || key == nil {
		return nil
	}
	if strings.HasPrefix(strings.TrimLeft(*key, "/"), ImagePrefix) {
		return errors.New("image keys under " + ImagePrefix + " are assigned by upload_image")
	}
	return nil
}

// UpdateAdRequest - PUT /ad/:id/update/
// Tất cả field đều bắt buộc; image không đổi.
type UpdateAdRequest struct {
	Name        *string          `json:"name"`
	Username    *string          `json:"username"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	IsPublished *bool            `json:"is_published"`
	Category    *string          `json:"category"`
}

func (r UpdateAdRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.By(notBlank),
			validation.RuneLength(1, MaxNameLength),
		),
		validation.Field(&r.Username, validation.Required.Error("username is required")),
		validation.Field(&r.Price, validation.Required.Error("price is required"), validation.By(validPrice)),
		validation.Field(&r.Description,
			validation.NotNil.Error("description is required"),
			validation.RuneLength(0, MaxDescriptionLength),
		),
		validation.Field(&r.IsPublished, validation.NotNil.Error("is_published is required")),
		validation.Field(&r.Category, validation.Required.Error("category is required")),
	)
}

// PatchAdRequest - PATCH /ad/:id/update/
// author / category là id. Field vắng mặt giữ nguyên; null bị từ chối;
// giá trị falsy (false, 0, "") vẫn được ghi nếu hợp lệ.
type PatchAdRequest struct {
	Name        shared.Optional[string]          `json:"name"`
	Author      shared.Optional[int64]           `json:"author"`
	Price       shared.Optional[decimal.Decimal] `json:"price"`
	Description shared.Optional[string]          `json:"description"`
	IsPublished shared.Optional[bool]            `json:"is_published"`
	Category    shared.Optional[int64]           `json:"category"`
}

func (r PatchAdRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, present[string](
			validation.Required.Error("name must not be empty"),
			validation.By(notBlank),
			validation.RuneLength(1, MaxNameLength),
		)),
		validation.Field(&r.Author, present[int64](validation.Required.Error("must be a positive id"), validation.Min(int64(1)))),
		validation.Field(&r.Price, present[decimal.Decimal](validation.By(validPrice))),
		validation.Field(&r.Description, present[string](validation.RuneLength(0, MaxDescriptionLength))),
		validation.Field(&r.IsPublished, present[bool]()),
		validation.Field(&r.Category, present[int64](validation.Required.Error("must be a positive id"), validation.Min(int64(1)))),
	)
}

// presentRule validates an Optional: absent passes, null fails,
// otherwise the inner rules run against the value.
type presentRule[T any] struct {
	rules []validation.Rule
}

func present[T any](rules ...validation.Rule) validation.Rule {
	return presentRule[T]{rules: rules}
}

func (r presentRule[T]) Validate(value interface{}) error {
	o, ok := value.(shared.Optional[T])
	if !ok || !o.Set {
		return nil
	}
	if o.Null {
		return errors.New("must not be null")
	}
	return validation.Validate(o.Value, r.rules...)
}

func notBlank(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return nil
	}
	if s != "" && strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}

func validPrice(value interface{}) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		d = *v
	default:
		return errors.New("must be a number")
	}

	if d.IsNegative() {
		return errors.New("must be no less than 0")
	}
	if !d.Equal(d.Truncate(priceMaxScale)) {
		return fmt.Errorf("must have at most %d decimal places", priceMaxScale)
	}
	if d.GreaterThanOrEqual(decimal.New(1, priceMaxDigits)) {
		return fmt.Errorf("must be less than 1e%d", priceMaxDigits)
	}
	return nil
}

// ParseAdFilter đọc filter từ query string: cat (lặp lại được), text, price_from, price_to
func ParseAdFilter(q url.Values) (AdFilter, error) {
	var (
		filter AdFilter
		errs   = validation.Errors{}
	)

	for _, raw := range q["cat"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				errs["cat"] = errors.New("must be a positive integer")
				continue
			}
			filter.CategoryIDs = append(filter.CategoryIDs, id)
		}
	}

	filter.Text = strings.TrimSpace(q.Get("text"))

	parsePrice := func(key string) *decimal.Decimal {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			errs[key] = errors.New("must be a number")
			return nil
		}
		if d.IsNegative() {
			errs[key] = errors.New("must be no less than 0")
			return nil
		}
		return &d
	}
	filter.PriceFrom = parsePrice("price_from")
	filter.PriceTo = parsePrice("price_to")

	if filter.PriceFrom != nil && filter.PriceTo != nil && filter.PriceFrom.GreaterThan(*filter.PriceTo) {
		errs["price_to"] = errors.New("must be no less than price_from")
	}

	if len(errs) > 0 {
		return AdFilter{}, errs
	}
	return filter, nil
}

// ════════════════════════════════════════════════════════════════
// RESPONSES
// ════════════════════════════════════════════════════════════════

// Price renders a decimal as a bare JSON number.
type Price decimal.Decimal

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(p).String()), nil
}

// AdListItem - phần tử của GET /ad/; author là first_name
type AdListItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	AuthorID    int64   `json:"author_id"`
	Author      string  `json:"author"`
	Price       Price   `json:"price"`
	Description string  `json:"description"`
	IsPublished bool    `json:"is_published"`
	CategoryID  int64   `json:"category_id"`
	Image       *string `json:"image"`
}

// AdDetailResponse - GET /ad/:id/; author là "first last", category là tên
type AdDetailResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Author      string  `json:"author"`
	Price       Price   `json:"price"`
	Description string  `json:"description"`
	IsPublished bool    `json:"is_published"`
	Category    string  `json:"category"`
	Image       *string `json:"image"`
}

// AdResponse - create/update; author là username
type AdResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Author      string  `json:"author"`
	Price       Price   `json:"price"`
	Description string  `json:"description"`
	IsPublished bool    `json:"is_published"`
	Category    string  `json:"category"`
	Image       *string `json:"image"`
}

type DeleteAdResponse struct {
	ID int64 `json:"id"`
}

type UploadImageResponse struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// URLFunc maps a stored object key to its public URL.
type URLFunc func(key string) string

func imageURL(key *string, toURL URLFunc) *string {
	if key == nil || *key == "" {
		return nil
	}
	u := toURL(*key)
	return &u
}

func (d *AdDetail) ToListItem(toURL URLFunc) AdListItem {
	return AdListItem{
		ID:          d.ID,
		Name:        d.Name,
		AuthorID:    d.AuthorID,
		Author:      d.AuthorFirstName,
		Price:       Price(d.Price),
		Description: d.Description,
		IsPublished: d.IsPublished,
		CategoryID:  d.CategoryID,
		Image:       imageURL(d.Image, toURL),
	}
}

func (d *AdDetail) ToDetailResponse(toURL URLFunc) AdDetailResponse {
	return AdDetailResponse{
		ID:          d.ID,
		Name:        d.Name,
		Author:      d.AuthorFullName(),
		Price:       Price(d.Price),
		Description: d.Description,
		IsPublished: d.IsPublished,
		Category:    d.CategoryName,
		Image:       imageURL(d.Image, toURL),
	}
}

func (d *AdDetail) ToResponse(toURL URLFunc) AdResponse {
	return AdResponse{
		ID:          d.ID,
		Name:        d.Name,
		Author:      d.AuthorUsername,
		Price:       Price(d.Price),
		Description: d.Description,
		IsPublished: d.IsPublished,
		Category:    d.CategoryName,
		Image:       imageURL(d.Image, toURL),
	}
}
