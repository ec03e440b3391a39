package licensing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatIDNumber(t *testing.T) {
	assert.Equal(t, "EMP-4521", FormatIDNumber("EMP-%s", "4521"))
	assert.Equal(t, "EMP-4521", FormatIDNumber("EMP-%s", " 4521 "))
	assert.Equal(t, "4521", FormatIDNumber("%s", "4521"))
	assert.Equal(t, "a-4521-z", FormatIDNumber("a-%s-z", "4521"))
}

func TestValidateIDNumberFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{format: "EMP-%s"},
		{format: "%s"},
		{format: "EMP-", wantErr: true},
		{format: "", wantErr: true},
		{format: "%d", wantErr: true},
		{format: "%s-%s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := ValidateIDNumberFormat(tt.format)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidIDFormat)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewTargetSet_RejectsFormatWithoutPlaceholder(t *testing.T) {
	set, err := NewTargetSet("North", "EMP-", 1)
	assert.ErrorIs(t, err, ErrInvalidIDFormat)
	assert.Nil(t, set)

	set, err = NewTargetSet("North", "EMP-%s", 1)
	require.NoError(t, err)
	assert.Equal(t, "EMP-4521", set.CanonicalIDNumber("4521"))

	assert.ErrorIs(t, set.Update("North", "nope"), ErrInvalidIDFormat)
	assert.Equal(t, "EMP-%s", set.UserIDNumberFormat(), "failed update leaves format untouched")
}

func TestProductSet_DiffProducts(t *testing.T) {
	set := ReconstructProductSet(1, "Core", testStart, 1, []*Product{
		ReconstructProduct(10, 1, ProductTypeCourse, 100),
		ReconstructProduct(11, 1, ProductTypeCourse, 101),
		ReconstructProduct(12, 1, ProductTypeProgram, 100),
	})

	add, remove := set.DiffProducts([]ItemRef{
		{Type: ProductTypeCourse, ItemID: 100},
		{Type: ProductTypeProgram, ItemID: 200},
		{Type: ProductTypeProgram, ItemID: 200},
	})

	assert.Equal(t, []ItemRef{{Type: ProductTypeProgram, ItemID: 200}}, add)
	require.Len(t, remove, 2)
	assert.Equal(t, uint(11), remove[0].ID())
	assert.Equal(t, uint(12), remove[1].ID())

	assert.True(t, set.Contains(10))
	assert.False(t, set.Contains(99))
}

func TestTargetSet_DiffTargets(t *testing.T) {
	set := ReconstructTargetSet(1, "North", "%s", testStart, 1, []*Target{
		ReconstructTarget(20, 1, TargetTypeOrganisation, 7),
	})

	add, remove := set.DiffTargets(nil)
	assert.Empty(t, add)
	require.Len(t, remove, 1)

	add, remove = set.DiffTargets([]ItemRef{{Type: TargetTypeOrganisation, ItemID: 7}, {Type: TargetTypeOrganisation, ItemID: 8}})
	assert.Equal(t, []ItemRef{{Type: TargetTypeOrganisation, ItemID: 8}}, add)
	assert.Empty(t, remove)
}
