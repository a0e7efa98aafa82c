package toolchain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linhlhq/unollvm/pkg/rules"
)

func setupRoot(t *testing.T, versions ...string) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bin", "clang"), []byte("#!/bin/sh\n"), 0o755))

	for _, version := range versions {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "lib", "clang", version, "include"), 0o755))
	}

	return root
}

func TestResolveSingleIncludeDir(t *testing.T) {
	root := setupRoot(t, "12.0.0")
	cfg := rules.ToolchainConfig{
		Root:         root,
		Compiler:     "bin/clang",
		IncludeGlobs: []string{"lib/clang/*/include"},
	}

	tc, err := Resolve(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "bin", "clang"), tc.Compiler)
	assert.Equal(t, []string{filepath.Join(root, "lib", "clang", "12.0.0", "include")}, tc.IncludeDirs)
}

func TestResolveAmbiguousIncludeGlob(t *testing.T) {
	root := setupRoot(t, "12.0.0", "13.0.1")
	cfg := rules.ToolchainConfig{
		Root:         root,
		Compiler:     "bin/clang",
		IncludeGlobs: []string{"lib/clang/*/include"},
	}

	_, err := Resolve(context.Background(), cfg)
	require.Error(t, err)

	var ambErr *AmbiguousIncludeError
	require.ErrorAs(t, err, &ambErr)
	assert.Equal(t, "lib/clang/*/include", ambErr.Glob)
	assert.Len(t, ambErr.Candidates, 2)
}

func TestResolveEmptyIncludeGlobIsNotAnError(t *testing.T) {
	root := setupRoot(t)
	cfg := rules.ToolchainConfig{
		Root:         root,
		Compiler:     "bin/clang",
		IncludeGlobs: []string{"lib/clang/*/include"},
	}

	tc, err := Resolve(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, tc.IncludeDirs)
}

func TestResolveMissingCompiler(t *testing.T) {
	cfg := rules.ToolchainConfig{
		Root:     t.TempDir(),
		Compiler: "bin/clang",
	}

	_, err := Resolve(context.Background(), cfg)
	assert.Error(t, err)
}

func TestResolveAbsoluteCompilerPath(t *testing.T) {
	root := setupRoot(t)
	cfg := rules.ToolchainConfig{
		Root:     t.TempDir(),
		Compiler: filepath.Join(root, "bin", "clang"),
	}

	tc, err := Resolve(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "bin", "clang"), tc.Compiler)
}
