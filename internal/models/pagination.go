package models

// Default and maximum page sizes for list endpoints.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is pagination metadata returned with list responses.
type Page struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

// NewPage computes pages = ceil(total/limit).
func NewPage(page, limit, total int) Page {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page{Page: page, Pages: pages, Total: total}
}
