// Package pagination implements page-number pagination for list endpoints.
package pagination

import (
	"math"
	"strconv"
	"strings"
)

const DefaultPageSize = 10

type Paginator struct {
	PageSize int
}

func New(pageSize int) Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Paginator{PageSize: pageSize}
}

// Request is a resolved page: 1-based Number, with Limit/Offset for SQL.
type Request struct {
	Number int
	Limit  int
	Offset int
}

// Parse đọc query param "page". Giá trị rỗng, không phải số hoặc < 1 đều về trang 1.
// Trang quá lớn để tính offset được coi là nằm sau trang cuối (Offset = math.MaxInt).
func (p Paginator) Parse(raw string) Request {
	number, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || number < 1 {
		number = 1
	}

	offset := math.MaxInt
	if number-1 <= math.MaxInt/p.PageSize {
		offset = (number - 1) * p.PageSize
	}

	return Request{
		Number: number,
		Limit:  p.PageSize,
		Offset: offset,
	}
}

// PastEnd reports whether offset skips every one of total rows.
func PastEnd(offset int, total int64) bool {
	return offset < 0 || int64(offset) >= total
}

// Page is the JSON body of every paginated list.
type Page[T any] struct {
	Total    int64 `json:"total"`
	NumPages int   `json:"num_pages"`
	Items    []T   `json:"items"`
}

// NumPages = ceil(total/size); một danh sách rỗng vẫn có 1 trang.
func NumPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// NewPage builds a Page; Items is never nil so it encodes as [].
func NewPage[T any](items []T, total int64, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Total:    total,
		NumPages: NumPages(total, size),
		Items:    items,
	}
}
