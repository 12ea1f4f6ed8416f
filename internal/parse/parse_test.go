package parse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamscole/ped-sim/internal/diag"
	"github.com/williamscole/ped-sim/internal/model"
)

func compile(t *testing.T, src string) (*Result, error) {
	t.Helper()
	return Compile(strings.NewReader(src))
}

func TestCompileSiblingScenario(t *testing.T) {
	t.Parallel()

	res, err := compile(t, `# full siblings, one fixed male
def fam 5 3

1 1
2 0 2 1sM
3 2
`)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Pedigrees, 1)

	p := res.Pedigrees[0]
	assert.Equal(t, "fam", p.Name())
	assert.Equal(t, 5, p.Replicates())
	assert.Equal(t, 2, p.Line())
	require.Equal(t, 2, p.NumBranches(1))
	for br := 0; br < 2; br++ {
		a, b, ok := p.Parents(1, br)
		require.True(t, ok)
		assert.Equal(t, model.BranchParent(0, 0), a)
		assert.Equal(t, model.FounderParent(0, 0, 1), b)
	}
	assert.Equal(t, model.Male, p.Sex(1, 0))

	require.Equal(t, 2, p.NumBranches(2))
	assert.Equal(t, 2, p.SamplesToPrint(2, 0))
	assert.Equal(t, 2, p.SamplesToPrint(2, 1))
}

func TestCompileMultiplePedigrees(t *testing.T) {
	t.Parallel()

	res, err := compile(t, `def first 1 2
2 1
def second 3 1 F
1 1
`)
	require.NoError(t, err)
	require.Len(t, res.Pedigrees, 2)
	assert.Equal(t, "first", res.Pedigrees[0].Name())
	assert.Equal(t, "second", res.Pedigrees[1].Name())
	assert.Equal(t, model.Female, res.Pedigrees[1].I1Sex())
	assert.Equal(t, model.SexUnknown, res.Pedigrees[0].I1Sex())
}

func TestCompileThirdTokenDirective(t *testing.T) {
	t.Parallel()

	res, err := compile(t, "def d 1 2\n2 1 1n\n")
	require.NoError(t, err)
	p := res.Pedigrees[0]
	assert.Equal(t, 2, p.NumBranches(1), "default count kept")
	assert.Equal(t, 0, p.SamplesToPrint(1, 0))
	assert.Equal(t, 1, p.SamplesToPrint(1, 1))
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, 2, res.Warnings[0].Line)
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		kind  diag.Kind
		line  int
		token string
	}{
		{"empty", "# nothing\n\n", diag.KindEmptyFile, 0, ""},
		{"generation before def", "1 1\n", diag.KindSyntax, 1, "1"},
		{"short def", "def x 1\n", diag.KindSyntax, 1, ""},
		{"long def", "def x 1 1 M extra\n", diag.KindSyntax, 1, ""},
		{"bad i1 sex", "def x 1 1 Q\n", diag.KindSyntax, 1, "Q"},
		{"bad replicates", "def x one 1\n", diag.KindNumber, 1, "one"},
		{"zero generations", "def x 1 0\n", diag.KindInvalidCount, 1, ""},
		{"short generation line", "def x 1 1\n1\n", diag.KindSyntax, 2, ""},
		{"bad generation number", "def x 1 1\ng1 1\n", diag.KindNumber, 2, "g1"},
		{"bad branch count", "def x 1 2\n2 1 3x\n", diag.KindNumber, 2, "3x"},
		{"zero branch count", "def x 1 2\n2 1 0\n", diag.KindRange, 2, "0"},
		{"huge branch count", "def x 1 2\n2 1 4611686018427387904\n", diag.KindResource, 2, "4611686018427387904"},
		{"branch total over limit", "def x 1 3\n1 0 1\n3 1 1048576\n", diag.KindResource, 3, ""},
		{"too many generations", "def x 1 100000\n", diag.KindResource, 1, ""},
		{"generation out of range", "def x 1 2\n3 1\n", diag.KindRange, 2, ""},
		{"decreasing range", "def x 1 2\n1 0 2\n2 1 3 3-2:1_2\n", diag.KindRange, 3, "3-2:1_2"},
		{"unterminated range", "def x 1 2\n2 1 1-:1\n", diag.KindUnterminatedRange, 2, "1-:1"},
		{"bad directive", "def x 1 2\n2 1 2 1sQ\n", diag.KindDirective, 2, "1sQ"},
		{"duplicate name", "def fam 1 1\n1 1\n\ndef fam 1 1\n1 1\n", diag.KindDuplicateName, 4, "fam"},
		{"no printable output", "def x 1 2\n1 1\n", diag.KindNoPrintableOutput, 1, ""},
		{"no printable output before next def", "def x 1 2\n1 1\ndef y 1 1\n1 1\n", diag.KindNoPrintableOutput, 1, ""},
		{"self marriage", "def x 1 2\n2 1 1:1_1\n", diag.KindSexConflict, 2, "1:1_1"},
		{"fixed i1 sex marriage", "def x 1 2 M\n1 0 2\n2 1 1:1_2\n", diag.KindSexConflict, 3, "1:1_2"},
		{"same fixed sex marriage", "def x 1 3\n2 0 2 1:1 2:1 1-2sM\n3 1 1:1_2\n", diag.KindSexConflict, 3, "1:1_2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := compile(t, tt.src)
			require.Error(t, err)
			require.NotNil(t, res)
			assert.Nil(t, res.Pedigrees)
			assert.ErrorIs(t, err, tt.kind.Sentinel())

			var de *diag.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.kind, de.Kind, "err: %v", err)
			assert.Equal(t, tt.line, de.Line, "err: %v", err)
			assert.Equal(t, tt.token, de.Token, "err: %v", err)
		})
	}
}

func TestCompileErrorKeepsEarlierWarnings(t *testing.T) {
	t.Parallel()

	res, err := compile(t, "def x 1 2\n1 0 1n\n2 1 1:1_1\n")
	require.ErrorIs(t, err, diag.ErrSexConflict)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Msg, "redundant")
}

func TestCompileErrorText(t *testing.T) {
	t.Parallel()

	_, err := compile(t, "def x 1 2\n2 1 3-2:1_2\n")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "line 2 in def: "), err.Error())
	assert.Contains(t, err.Error(), `(token "3-2:1_2")`)
}

func TestCompileFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "fam.def")
	if err := os.WriteFile(path, []byte("def hs 2 3\n3 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := CompileFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Source)
	require.Len(t, res.Pedigrees, 1)
	assert.Equal(t, 3, res.Pedigrees[0].NumGenerations())
}

func TestCompileFileMissing(t *testing.T) {
	t.Parallel()

	_, err := CompileFile(filepath.Join(t.TempDir(), "absent.def"))
	require.ErrorIs(t, err, diag.ErrResource)
	assert.Equal(t, 13, diag.KindOf(err).ExitCode())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
