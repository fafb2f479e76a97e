package models

// PaginatedResponse wraps a page of list results. Total is the count
// across all pages, not the length of Data.
type PaginatedResponse struct {
	Data     any `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}
