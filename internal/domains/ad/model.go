package ad

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MaxNameLength        = 255
	MaxDescriptionLength = 2000

	// ImagePrefix là thư mục gốc chứa ảnh của ads trong bucket
	ImagePrefix = "ads/"
)

// Ad is a classified listing.
type Ad struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	AuthorID    int64           `json:"author_id"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	IsPublished bool            `json:"is_published"`
	CategoryID  int64           `json:"category_id"`
	Image       *string         `json:"image"` // object key, nil khi chưa upload
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AdDetail là Ad đã join với author và category
type AdDetail struct {
	Ad
	AuthorUsername  string
	AuthorFirstName string
	AuthorLastName  string
	CategoryName    string
}

// AuthorFullName: "first last", bỏ khoảng trắng thừa khi thiếu một phần
func (d *AdDetail) AuthorFullName() string {
	switch {
	case d.AuthorFirstName == "":
		return d.AuthorLastName
	case d.AuthorLastName == "":
		return d.AuthorFirstName
	default:
		return d.AuthorFirstName + " " + d.AuthorLastName
	}
}

// AdPatch holds resolved column values for a partial update.
// nil means the column is left unchanged.
type AdPatch struct {
	Name        *string
	AuthorID    *int64
	Price       *decimal.Decimal
	Description *string
	IsPublished *bool
	CategoryID  *int64
}

func (p AdPatch) IsEmpty() bool {
	return p.Name == nil && p.AuthorID == nil && p.Price == nil &&
		p.Description == nil && p.IsPublished == nil && p.CategoryID == nil
}

// AdFilter - query string filters của GET /ad/
type AdFilter struct {
	CategoryIDs []int64
	Text        string
	PriceFrom   *decimal.Decimal
	PriceTo     *decimal.Decimal
}

// ImageDir is the storage prefix owning every image of one ad.
func ImageDir(adID int64) string {
	return ImagePrefix + strconv.FormatInt(adID, 10) + "/"
}
