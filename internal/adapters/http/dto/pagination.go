package dto

// PageRequest holds zero-based page query parameters. Sizes are clamped by
// the services; zero selects their default.
type PageRequest struct {
	Page int `form:"page" validate:"gte=0"`
	Size int `form:"size" validate:"gte=0"`
}

// Page is one page of a listing, in the shape the frontend pager expects.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int64 `json:"totalPages"`
}

// MapPage converts items with fn and computes the page count. Content is
// never nil so an empty page encodes as [].
func MapPage[S, T any](items []S, page, size int, total int64, fn func(S) T) *Page[T] {
	p := &Page[T]{
		Content:       make([]T, 0, len(items)),
		Page:          page,
		Size:          size,
		TotalElements: total,
	}
	for _, item := range items {
		p.Content = append(p.Content, fn(item))
	}
	if size > 0 {
		p.TotalPages = (total + int64(size) - 1) / int64(size)
	}
	return p
}
