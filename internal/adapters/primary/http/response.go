package http

import (
	"encoding/json"
	"net/http"
)

// PaginatedResponse is one limit/offset window of a longer list.
type PaginatedResponse[T any] struct {
	Data       []T                `json:"data"`
	Pagination PaginationMetadata `json:"pagination"`
}

type PaginationMetadata struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// ListResponse is a complete, unpaged list.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// WriteJSON sends v as the body. Encoding errors are dropped since the
// status line is already out.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteCreated(w http.ResponseWriter, v any) { WriteJSON(w, http.StatusCreated, v) }

func WriteNoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// WritePage writes rows fetched with limit+1. The surplus row is dropped
// and only sets HasMore.
func WritePage[T any](w http.ResponseWriter, rows []T, limit, offset int) {
	meta := PaginationMetadata{Limit: limit, Offset: offset, HasMore: len(rows) > limit}
	switch {
	case meta.HasMore:
		rows = rows[:limit]
	case rows == nil:
		rows = []T{}
	}
	WriteJSON(w, http.StatusOK, PaginatedResponse[T]{Data: rows, Pagination: meta})
}

// WriteList writes every item; a nil slice is sent as [].
func WriteList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	WriteJSON(w, http.StatusOK, ListResponse[T]{Data: items, Count: len(items)})
}
