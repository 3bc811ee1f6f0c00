package tagset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func TestCanonical(t *testing.T) {
	tests := []struct {
		name    string
		primary *int64
		ids     []int64
		want    []int64
	}{
		{name: "empty input", want: []int64{}},
		{name: "dedupes in first-seen order", ids: []int64{3, 1, 3, 2, 1}, want: []int64{3, 1, 2}},
		{name: "drops non-positive ids", ids: []int64{0, -4, 7}, want: []int64{7}},
		{name: "appends missing primary", primary: ptr(9), ids: []int64{5}, want: []int64{5, 9}},
		{name: "primary already tagged", primary: ptr(5), ids: []int64{5, 6}, want: []int64{5, 6}},
		{name: "primary only", primary: ptr(4), want: []int64{4}},
		{name: "non-positive primary ignored", primary: ptr(0), ids: []int64{2}, want: []int64{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonical(tt.primary, tt.ids)
			assert.Equal(t, tt.want, got)
			if tt.primary != nil && *tt.primary > 0 {
				assert.True(t, Consistent(tt.primary, got), "primary must be a member of the tag set")
			}
		})
	}
}

func TestCanonical_DoesNotMutateInput(t *testing.T) {
	ids := []int64{2, 2, 1}
	Canonical(ptr(3), ids)
	assert.Equal(t, []int64{2, 2, 1}, ids)
}

func TestConsistent(t *testing.T) {
	assert.True(t, Consistent(nil, nil))
	assert.True(t, Consistent(ptr(1), []int64{1, 2}))
	assert.False(t, Consistent(ptr(3), []int64{1, 2}))
}

func TestIntersects(t *testing.T) {
	assert.True(t, Intersects([]int64{5}, []int64{5, 9}))
	assert.True(t, Intersects([]int64{1, 9}, []int64{5, 9}))
	assert.False(t, Intersects([]int64{1, 2}, []int64{5, 9}))
	assert.False(t, Intersects(nil, []int64{5}))
}
