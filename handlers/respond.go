// Package handlers wires the JSON API surface of the CCTV rollout tracker.
package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"
)

// Pagination mirrors the response envelope the legacy dashboard consumed
// from its headless CMS: {data: [...], meta: {pagination: {...}}}.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// MaxPageSize caps list responses; the old dashboard fetched reference
// collections with pageSize up to 1000 and assumed that was everything.
const MaxPageSize = 1000

// DefaultPageSize applies when the client sends no pagination params.
const DefaultPageSize = 100

// OKList writes a paginated list envelope.
func OKList(e *core.RequestEvent, data any, p Pagination) error {
	return e.JSON(http.StatusOK, map[string]any{
		"data": data,
		"meta": map[string]any{"pagination": p},
	})
}

// OKData writes a single-object envelope.
func OKData(e *core.RequestEvent, data any) error {
	return e.JSON(http.StatusOK, map[string]any{"data": data})
}

// Created writes a single-object envelope with status 201.
func Created(e *core.RequestEvent, data any) error {
	return e.JSON(http.StatusCreated, map[string]any{"data": data})
}

// APIError writes a structured error envelope. fields may be nil; when set
// it carries field-level validation messages.
func APIError(e *core.RequestEvent, status int, code, message string, fields map[string]string) error {
	body := map[string]any{
		"code":    code,
		"message": message,
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	return e.JSON(status, map[string]any{"error": body})
}
