package models

// Pagination contains pagination metadata returned by paged list endpoints.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	Total       int `json:"total"`
	TotalPages  int `json:"totalPages"`
}

// Page is a paged list of items.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
