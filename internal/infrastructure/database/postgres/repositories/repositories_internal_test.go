package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
)

func TestNewRepositories(t *testing.T) {
	t.Parallel()

	t.Run("CaseRepository", func(t *testing.T) {
		assert.NotNil(t, NewCaseRepository(nil, nil))
	})

	t.Run("AuditRepository", func(t *testing.T) {
		assert.NotNil(t, NewAuditRepository(nil, nil))
	})

	t.Run("NoteRepository", func(t *testing.T) {
		assert.NotNil(t, NewNoteRepository(nil, nil))
	})

	t.Run("NationalCodeRepository", func(t *testing.T) {
		assert.NotNil(t, NewNationalCodeRepository(nil, nil))
	})
}

func TestPageBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		in     common.Pagination
		limit  int
		offset int
	}{
		{"zero value defaults", common.Pagination{}, 20, 0},
		{"explicit page", common.Pagination{Page: 3, PageSize: 10}, 10, 20},
		{"oversized page clamped", common.Pagination{Page: 1, PageSize: 500}, 100, 0},
		{"negative page treated as first", common.Pagination{Page: -2, PageSize: 10}, 10, 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			limit, offset := pageBounds(tc.in)
			assert.Equal(t, tc.limit, limit)
			assert.Equal(t, tc.offset, offset)
		})
	}
}

func TestItoa(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1", itoa(1))
	assert.Equal(t, "42", itoa(42))
}

//Personal.AI order the ending
