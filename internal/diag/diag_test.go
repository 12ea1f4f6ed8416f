package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"line and token", Errorf(KindRange, 4, "3-2:1_2", "bad range"), `line 4 in def: bad range (token "3-2:1_2")`},
		{"line only", Errorf(KindSyntax, 2, "", "too few fields"), "line 2 in def: too few fields"},
		{"no line", Errorf(KindEmptyFile, 0, "", "no pedigrees"), "no pedigrees"},
		{"formatted", Errorf(KindNumber, 1, "x", "unable to parse %s", "count"), `line 1 in def: unable to parse count (token "x")`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestSentinelMatching(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("fam.def: %w", Errorf(KindSexConflict, 3, "1:1_2", "conflict"))
	assert.ErrorIs(t, err, ErrSexConflict)
	assert.NotErrorIs(t, err, ErrRange)
	assert.Equal(t, KindSexConflict, KindOf(err))
}

func TestWrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("inner")
	err := Wrap(KindResource, 0, "", cause)
	assert.Equal(t, "inner", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrResource)
	assert.Same(t, cause, errors.Unwrap(err))
}

func TestKindOfPlainError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestExitCodesDistinct(t *testing.T) {
	t.Parallel()

	seen := map[int]Kind{}
	for k := KindSyntax; k <= KindResource; k++ {
		code := k.ExitCode()
		require.NotEqual(t, 1, code, "kind %s", k)
		prev, dup := seen[code]
		require.False(t, dup, "kinds %s and %s share exit code %d", prev, k, code)
		seen[code] = k
		assert.NotNil(t, k.Sentinel(), "kind %s", k)
		assert.NotEmpty(t, k.Category(), "kind %s", k)
	}
}

func TestUnknownKind(t *testing.T) {
	t.Parallel()

	k := Kind(99)
	assert.Equal(t, 1, k.ExitCode())
	assert.Equal(t, "kind(99)", k.String())
	assert.Nil(t, k.Sentinel())
}

func TestCategory(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CategorySyntax, KindUnterminatedRange.Category())
	assert.Equal(t, CategoryRange, KindRange.Category())
	assert.Equal(t, CategoryDuplicateAssignment, KindDuplicateAssignment.Category())
	assert.Equal(t, CategorySexConflict, KindSexConflict.Category())
	assert.Equal(t, CategoryStructural, KindEmptyFile.Category())
	assert.Equal(t, CategoryResource, KindResource.Category())
}

func TestWarningString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "line 5 in def: redundant", Warnf(5, "redundant").String())
	assert.Equal(t, "pedigree fam: 2 unprinted", Warnf(0, "pedigree %s: %d unprinted", "fam", 2).String())
}
