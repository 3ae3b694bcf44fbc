package shared

// DefaultPageSize applies when a request omits page_size
const DefaultPageSize = 50

// Pagination is a 1-based page request
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize fills in defaults and caps PageSize at maxPageSize when it is
// positive.
func (p Pagination) Normalize(maxPageSize int) Pagination {
	p.Page = max(p.Page, 1)
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if maxPageSize > 0 {
		p.PageSize = min(p.PageSize, maxPageSize)
	}
	return p
}

func (p Pagination) Offset() int {
	return max(p.Page-1, 0) * p.PageSize
}

// Paginated is one page of items plus the size of the whole result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated never returns nil Items, so the JSON is always an array
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	var pages int
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Paginated[T]{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: pages}
}
