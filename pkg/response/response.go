package response

import "github.com/Rampantfam/rampant-notion-mvp-sub000/pkg/pagination"

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// List wraps one page of a listing: {"<key>": items, "total": .., "page": .., "limit": .., "total_pages": ..}.
func List(statusCode int, key string, items interface{}, meta pagination.Meta) Response {
	return Success(statusCode, map[string]interface{}{
		key:           items,
		"total":       meta.Total,
		"page":        meta.Page,
		"limit":       meta.Limit,
		"total_pages": meta.TotalPages,
	})
}
