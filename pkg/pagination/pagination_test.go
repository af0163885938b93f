package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParams_Validate(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPerPage, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = &PaginationParams{Page: 3, PerPage: 10}
	p.Validate()
	assert.Equal(t, 20, p.Offset())
}

func TestNewPagination(t *testing.T) {
	page := NewPagination(2, 10, 21)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)

	empty := NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestCursor_RoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	params := &CursorParams{Cursor: Cursor{ID: "abc", CreatedAt: at}.Encode()}

	cursor, err := params.DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, "abc", cursor.ID)
	assert.True(t, at.Equal(cursor.CreatedAt))

	_, err = (&CursorParams{Cursor: "%%%"}).DecodeCursor()
	assert.Error(t, err)
	_, err = (&CursorParams{Cursor: Cursor{}.Encode()}).DecodeCursor()
	assert.Error(t, err)
}

func TestNewCursorPagination(t *testing.T) {
	pos := func(n int) Cursor { return Cursor{ID: string(rune('a' + n))} }

	t.Run("forward first page", func(t *testing.T) {
		params := &CursorParams{Limit: 2}
		params.Validate()
		page, rows := NewCursorPagination([]int{0, 1, 2}, params, pos)
		assert.Equal(t, []int{0, 1}, rows)
		assert.True(t, page.HasNext)
		assert.False(t, page.HasPrev)
	})

	t.Run("backward page drops the leading probe row", func(t *testing.T) {
		params := &CursorParams{Cursor: "x", Direction: CursorDirectionPrev, Limit: 2}
		params.Validate()
		page, rows := NewCursorPagination([]int{0, 1, 2}, params, pos)
		assert.Equal(t, []int{1, 2}, rows)
		assert.True(t, page.HasPrev)
		assert.True(t, page.HasNext)
	})

	t.Run("empty page has no cursors", func(t *testing.T) {
		params := DefaultCursorParams()
		page, rows := NewCursorPagination([]int{}, params, pos)
		assert.Empty(t, rows)
		assert.Nil(t, page.NextCursor)
		assert.Nil(t, page.PrevCursor)
	})
}
