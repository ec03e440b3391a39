package mapper

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSlice(t *testing.T) {
	tests := []struct {
		name  string
		input []int
		want  []string
	}{
		{name: "nil input", input: nil, want: []string{}},
		{name: "empty input", input: []int{}, want: []string{}},
		{name: "values", input: []int{1, 2, 3}, want: []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapSlice(tt.input, strconv.Itoa)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

type row struct{ id int }
type entity struct{ id string }

func TestMapSlicePtr(t *testing.T) {
	toEntity := func(r *row) *entity { return &entity{id: strconv.Itoa(r.id)} }

	t.Run("skips nil elements", func(t *testing.T) {
		got := MapSlicePtr([]*row{{id: 1}, nil, {id: 3}}, toEntity)
		require.Len(t, got, 2)
		assert.Equal(t, "1", got[0].id)
		assert.Equal(t, "3", got[1].id)
	})

	t.Run("nil input", func(t *testing.T) {
		got := MapSlicePtr[row, entity](nil, toEntity)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
