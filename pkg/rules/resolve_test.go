package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("int main() { return 0; }\n"), 0o644))
	}
}

func TestResolveSourcesSortsLexicographically(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "banana.c", "apple.c", "cherry.c", "readme.md")

	sources, err := ResolveSources(dir, "*.c")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "apple.c"),
		filepath.Join(dir, "banana.c"),
		filepath.Join(dir, "cherry.c"),
	}, sources)
}

func TestResolveSourcesEmptyMatchIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "readme.md")

	sources, err := ResolveSources(dir, "*.c")
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestDeriveTarget(t *testing.T) {
	output, err := DeriveTarget("foo.c", ".c", ".fla")
	require.NoError(t, err)
	assert.Equal(t, "foo.fla", output)
}

func TestDeriveTargetRejectsWrongSuffix(t *testing.T) {
	_, err := DeriveTarget("foo.txt", ".c", ".fla")
	require.Error(t, err)

	var suffixErr *InvalidSuffixError
	require.ErrorAs(t, err, &suffixErr)
	assert.Equal(t, "foo.txt", suffixErr.Input)
	assert.Equal(t, ".c", suffixErr.Suffix)
}

func TestDerivePairsBijection(t *testing.T) {
	for _, count := range []int{0, 1, 5} {
		dir := t.TempDir()
		names := []string{"a.c", "b.c", "c.c", "d.c", "e.c"}[:count]
		writeFiles(t, dir, names...)

		sources, err := ResolveSources(dir, "*.c")
		require.NoError(t, err)
		require.Len(t, sources, count)

		pairs, err := DerivePairs(sources, ".c", ".fla")
		require.NoError(t, err)
		require.Len(t, pairs, count)

		outputs := make(map[string]bool)
		for idx, pair := range pairs {
			assert.Equal(t, sources[idx], pair.Input)
			assert.False(t, outputs[pair.Output], "output %s derived twice", pair.Output)
			outputs[pair.Output] = true
		}
	}
}

func TestDerivePairsRejectsDuplicateOutputs(t *testing.T) {
	_, err := DerivePairs([]string{"dup.c", "dup.c"}, ".c", ".fla")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dup.fla")
}

func TestDerivePairsAbortsOnFirstBadSuffix(t *testing.T) {
	_, err := DerivePairs([]string{"good.c", "bad.h"}, ".c", ".fla")

	var suffixErr *InvalidSuffixError
	require.ErrorAs(t, err, &suffixErr)
	assert.Equal(t, "bad.h", suffixErr.Input)
}
