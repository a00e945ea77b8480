package types

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects one page of a list query.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps the raw page and size into range.
func NewPage(number, size int) Page {
	if number <= 0 {
		number = 1
	}
	switch {
	case size > MaxPageSize:
		size = MaxPageSize
	case size <= 0:
		size = DefaultPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PaginatedResponse defines the structure for any paginated API response.
type PaginatedResponse struct {
	Data        interface{} `json:"data"`
	TotalRows   int64       `json:"totalRows"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	PageSize    int         `json:"pageSize"`
}

func NewPaginatedResponse(data interface{}, totalRows int64, p Page) PaginatedResponse {
	totalPages := 0
	if totalRows > 0 {
		totalPages = int(math.Ceil(float64(totalRows) / float64(p.Size)))
	}
	return PaginatedResponse{
		Data:        data,
		TotalRows:   totalRows,
		TotalPages:  totalPages,
		CurrentPage: p.Number,
		PageSize:    p.Size,
	}
}
