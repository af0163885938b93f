// Package pagination holds the page and keyset parameters shared by list
// endpoints, plus the metadata returned alongside each page.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

func clampLimit(n int) int {
	switch {
	case n < 1:
		return DefaultPerPage
	case n > MaxPerPage:
		return MaxPerPage
	default:
		return n
	}
}

// PaginationParams selects one numbered page of a list.
type PaginationParams struct {
	Page    int `form:"page" json:"page"`
	PerPage int `form:"per_page" json:"per_page"`
}

func DefaultPagination() *PaginationParams {
	return &PaginationParams{Page: 1, PerPage: DefaultPerPage}
}

// Validate clamps the parameters in place.
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	p.PerPage = clampLimit(p.PerPage)
}

func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

func NewPagination(page, perPage int, total int64) *Pagination {
	perPage = clampLimit(perPage)
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

type PaginatedResult[T any] struct {
	Items      []T         `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

func NewPaginatedResult[T any](items []T, p *Pagination) *PaginatedResult[T] {
	return &PaginatedResult[T]{Items: items, Pagination: p}
}

// CursorDirection is the way a keyset page walks from its cursor.
type CursorDirection string

const (
	CursorDirectionNext CursorDirection = "next"
	CursorDirectionPrev CursorDirection = "prev"
)

// Cursor is the keyset position of one row: its creation time with the id
// as tie breaker.
type Cursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Encode returns the opaque URL-safe form handed to clients.
func (c Cursor) Encode() string {
	data, _ := json.Marshal(c)
	return base64.URLEncoding.EncodeToString(data)
}

// CursorParams selects a keyset page.
type CursorParams struct {
	Cursor    string          `form:"cursor" json:"cursor"`
	Direction CursorDirection `form:"direction" json:"direction"`
	Limit     int             `form:"limit" json:"limit"`
}

func DefaultCursorParams() *CursorParams {
	return &CursorParams{Direction: CursorDirectionNext, Limit: DefaultPerPage}
}

// Validate clamps the limit and defaults the direction. Unknown directions
// read as forward.
func (c *CursorParams) Validate() {
	c.Limit = clampLimit(c.Limit)
	if c.Direction != CursorDirectionPrev {
		c.Direction = CursorDirectionNext
	}
}

// Backward reports whether the page walks towards older rows.
func (c *CursorParams) Backward() bool {
	return c.Cursor != "" && c.Direction == CursorDirectionPrev
}

// DecodeCursor returns nil for the first page.
func (c *CursorParams) DecodeCursor() (*Cursor, error) {
	if c.Cursor == "" {
		return nil, nil
	}
	decoded, err := base64.URLEncoding.DecodeString(c.Cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor format: %w", err)
	}
	var cursor Cursor
	if err := json.Unmarshal(decoded, &cursor); err != nil {
		return nil, fmt.Errorf("invalid cursor data: %w", err)
	}
	if cursor.ID == "" {
		return nil, fmt.Errorf("invalid cursor data: missing id")
	}
	return &cursor, nil
}

// CursorPagination is the metadata of one keyset page.
type CursorPagination struct {
	NextCursor *string `json:"next_cursor,omitempty"`
	PrevCursor *string `json:"prev_cursor,omitempty"`
	HasNext    bool    `json:"has_next"`
	HasPrev    bool    `json:"has_prev"`
	Limit      int     `json:"limit"`
}

type CursorPaginatedResult[T any] struct {
	Items      []T               `json:"items"`
	Pagination *CursorPagination `json:"pagination"`
}

func NewCursorPaginatedResult[T any](items []T, p *CursorPagination) *CursorPaginatedResult[T] {
	return &CursorPaginatedResult[T]{Items: items, Pagination: p}
}

// NewCursorPagination trims a probe of up to limit+1 rows, returned in
// ascending order, down to one page and works out which neighbours exist.
// On a backward page the extra row sits in front.
func NewCursorPagination[T any](rows []T, params *CursorParams, position func(T) Cursor) (*CursorPagination, []T) {
	more := len(rows) > params.Limit
	backward := params.Backward()
	if more {
		if backward {
			rows = rows[len(rows)-params.Limit:]
		} else {
			rows = rows[:params.Limit]
		}
	}

	page := &CursorPagination{Limit: params.Limit}
	if backward {
		page.HasPrev = more
		page.HasNext = true
	} else {
		page.HasNext = more
		page.HasPrev = params.Cursor != ""
	}

	if len(rows) > 0 {
		next := position(rows[len(rows)-1]).Encode()
		prev := position(rows[0]).Encode()
		page.NextCursor = &next
		page.PrevCursor = &prev
	}
	return page, rows
}
