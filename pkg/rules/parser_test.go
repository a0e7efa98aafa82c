package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRulesFile(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "build.star")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const basicRules = `
root = toolchain_root(env = 'OLLVM', default = '~/fallback/ollvm')

toolchain(
    root = root,
    compiler = 'bin/clang',
    include_globs = ['lib/clang/*/include'],
)

rule(
    sources = '*.c',
    from_suffix = '.c',
    to_suffix = '.fla',
    flags = ['-mllvm', '-fla'],
)
`

func TestParseFileBasic(t *testing.T) {
	t.Setenv("OLLVM", "/opt/ollvm")

	dir := t.TempDir()
	path := writeRulesFile(t, dir, basicRules)

	cfg, err := ParseFile(context.Background(), path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/opt/ollvm", cfg.Toolchain.Root)
	assert.Equal(t, "bin/clang", cfg.Toolchain.Compiler)
	assert.Equal(t, []string{"lib/clang/*/include"}, cfg.Toolchain.IncludeGlobs)

	require.Len(t, cfg.Rules, 1)
	rule := cfg.Rules[0]
	assert.Equal(t, "*.c", rule.Sources)
	assert.Equal(t, ".c", rule.FromSuffix)
	assert.Equal(t, ".fla", rule.ToSuffix)
	assert.Equal(t, []string{"-mllvm", "-fla"}, rule.Flags)
	assert.Equal(t, dir, rule.Base)
}

func TestParseFileEnvDefaultExpandsHome(t *testing.T) {
	t.Setenv("OLLVM", "")

	dir := t.TempDir()
	path := writeRulesFile(t, dir, basicRules)

	cfg, err := ParseFile(context.Background(), path, nil)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "fallback", "ollvm"), cfg.Toolchain.Root)
}

func TestParseFileOptionOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeRulesFile(t, dir, `
toolchain(root = '/opt/ollvm', compiler = 'bin/clang')

rule(
    sources = '*.c',
    from_suffix = '.c',
    to_suffix = '.fla',
    flags = [option('opt_level', default = '-O0', help = 'optimization level')],
)
`)

	cfg, err := ParseFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"-O0"}, cfg.Rules[0].Flags)

	cfg, err = ParseFile(context.Background(), path, map[string]string{"opt_level": "-O2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-O2"}, cfg.Rules[0].Flags)
}

func TestParseFileRuleBaseIsAnchored(t *testing.T) {
	dir := t.TempDir()
	path := writeRulesFile(t, dir, `
toolchain(root = '/opt/ollvm', compiler = 'bin/clang')

rule(
    sources = '*.c',
    from_suffix = '.c',
    to_suffix = '.fla',
    base = 'tests',
)
`)

	cfg, err := ParseFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tests"), cfg.Rules[0].Base)
}

func TestParseFileReadYaml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vals.yaml"),
		[]byte("flags:\n  extra: -g3\n"), 0o644))

	path := writeRulesFile(t, dir, `
toolchain(root = '/opt/ollvm', compiler = 'bin/clang')

rule(
    sources = '*.c',
    from_suffix = '.c',
    to_suffix = '.fla',
    flags = [read_yaml('vals.yaml', 'flags.extra', '-g0'), read_yaml('vals.yaml', 'flags.missing', '-g0')],
)
`)

	cfg, err := ParseFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"-g3", "-g0"}, cfg.Rules[0].Flags)
}

func TestParseFileRequiresToolchain(t *testing.T) {
	dir := t.TempDir()
	path := writeRulesFile(t, dir, `
rule(sources = '*.c', from_suffix = '.c', to_suffix = '.fla')
`)

	_, err := ParseFile(context.Background(), path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not declare a toolchain")
}

func TestParseFileRejectsSecondToolchain(t *testing.T) {
	dir := t.TempDir()
	path := writeRulesFile(t, dir, `
toolchain(root = '/a', compiler = 'bin/clang')
toolchain(root = '/b', compiler = 'bin/clang')
`)

	_, err := ParseFile(context.Background(), path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared twice")
}

func TestParseFileRejectsIdentitySuffixes(t *testing.T) {
	dir := t.TempDir()
	path := writeRulesFile(t, dir, `
toolchain(root = '/opt/ollvm', compiler = 'bin/clang')
rule(sources = '*.c', from_suffix = '.c', to_suffix = '.c')
`)

	_, err := ParseFile(context.Background(), path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every output would overwrite its input")
}

func TestParseFileFailBuiltin(t *testing.T) {
	dir := t.TempDir()
	path := writeRulesFile(t, dir, `fail('unsupported host')`)

	_, err := ParseFile(context.Background(), path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported host")
}

func TestParseFileMissingFile(t *testing.T) {
	_, err := ParseFile(context.Background(), filepath.Join(t.TempDir(), "build.star"), nil)
	assert.Error(t, err)
}
