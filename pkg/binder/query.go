package binder

import "net/http"

// Query creates a query parameter binder function.
//
// Example:
//
//	type ListRequest struct {
//		ParentID string `query:"parentId"`
//		Page     int    `query:"page"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}
