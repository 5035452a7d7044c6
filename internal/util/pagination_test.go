package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		page, size     int
		wantFrom, want int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 10, 0, 10},
		{2, 0, DefaultPageSize, DefaultPageSize},
		{1, 500, 0, DefaultPageSize},
	}
	for _, tc := range cases {
		from, limit := Calculate(tc.page, tc.size)
		assert.Equal(t, tc.wantFrom, from)
		assert.Equal(t, tc.want, limit)
	}
}

func TestTotalPages(t *testing.T) {
	assert.EqualValues(t, 0, TotalPages(0, 10))
	assert.EqualValues(t, 1, TotalPages(10, 10))
	assert.EqualValues(t, 2, TotalPages(11, 10))
	assert.EqualValues(t, 0, TotalPages(5, 0))
}
