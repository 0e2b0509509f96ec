package pagination_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/scaffold/pkg/pagination"
)

func TestCompute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		current    int
		pageSize   int
		total      int
		totalPages int
		pageRange  []int
		counter    string
		first      int
		last       int
	}{
		{
			name: "first page", current: 1, pageSize: 10, total: 25,
			totalPages: 3, pageRange: []int{1, 2, 3},
			counter: "Showing 1 to 10 of 25 entries",
		},
		{
			name: "page beyond the end", current: 5, pageSize: 10, total: 25,
			totalPages: 3, pageRange: []int{3},
			counter: "Showing 41 to 25 of 25 entries", first: 1,
		},
		{
			name: "middle of a long list", current: 5, pageSize: 10, total: 100,
			totalPages: 10, pageRange: []int{3, 4, 5, 6, 7},
			counter: "Showing 41 to 50 of 100 entries", first: 1, last: 10,
		},
		{
			name: "empty list", current: 1, pageSize: 10, total: 0,
			totalPages: 0, pageRange: []int{},
			counter: "Showing 1 to 0 of 0 entries",
		},
		{
			name: "invalid input is clamped", current: 0, pageSize: 0, total: 3,
			totalPages: 3, pageRange: []int{1, 2, 3},
			counter: "Showing 1 to 1 of 3 entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := pagination.Compute(tt.current, tt.pageSize, tt.total)
			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.pageRange, p.PageRange)
			assert.Equal(t, tt.counter, p.CounterString)
			assert.Equal(t, tt.first, p.FirstPage)
			assert.Equal(t, tt.last, p.LastPage)
		})
	}
}

func TestOffsetLimit(t *testing.T) {
	t.Parallel()

	p := pagination.Compute(3, 20, 100)
	if p.Offset() != 40 {
		t.Errorf("Offset() = %d, want 40", p.Offset())
	}
	if p.Limit() != 20 {
		t.Errorf("Limit() = %d, want 20", p.Limit())
	}
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
}

func TestComputeDoesNotOverflow(t *testing.T) {
	t.Parallel()

	t.Run("huge current page", func(t *testing.T) {
		t.Parallel()
		p := pagination.Compute(math.MaxInt/5, 10, 25)
		assert.Equal(t, 3, p.TotalPages)
		assert.Empty(t, p.PageRange)
		assert.Equal(t, math.MaxInt, p.Offset())
		assert.Equal(t, fmt.Sprintf("Showing %d to 25 of 25 entries", math.MaxInt), p.CounterString)
	})

	t.Run("huge page size", func(t *testing.T) {
		t.Parallel()
		p := pagination.Compute(1, math.MaxInt, 2)
		assert.Equal(t, 1, p.TotalPages)
		assert.Equal(t, []int{1}, p.PageRange)
		assert.Equal(t, 0, p.Offset())
		assert.Equal(t, "Showing 1 to 2 of 2 entries", p.CounterString)
	})

	t.Run("huge total", func(t *testing.T) {
		t.Parallel()
		p := pagination.Compute(math.MaxInt, 1, math.MaxInt)
		assert.Equal(t, math.MaxInt, p.TotalPages)
		assert.Equal(t, []int{math.MaxInt - 2, math.MaxInt - 1, math.MaxInt}, p.PageRange)
		assert.Equal(t, 1, p.FirstPage)
		assert.Zero(t, p.LastPage)
		assert.False(t, p.HasNext())
	})
}
