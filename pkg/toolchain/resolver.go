// Package toolchain locates the external compiler toolchain: it joins the
// configured root with the compiler binary and expands the versioned include
// directory globs. The engine never does any of this itself, it only receives
// the resolved result.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/linhlhq/unollvm/pkg/rules"
)

// Toolchain is a fully resolved compiler toolchain.
type Toolchain struct {
	Root        string
	Compiler    string
	IncludeDirs []string
}

// AmbiguousIncludeError indicates that an include glob matched more than one
// directory. Picking one silently would hide a broken or half-upgraded
// toolchain installation, so the caller has to disambiguate.
type AmbiguousIncludeError struct {
	Glob       string
	Candidates []string
}

func (e *AmbiguousIncludeError) Error() string {
	return fmt.Sprintf("include glob %s matches %d directories: %s",
		e.Glob, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// Resolve checks that the configured compiler exists under the toolchain root
// and expands each include glob. A glob that matches nothing contributes no
// include directory (a freshly built toolchain may not ship versioned
// resource directories yet); a glob that matches several is an
// *AmbiguousIncludeError.
func Resolve(ctx context.Context, cfg rules.ToolchainConfig) (*Toolchain, error) {
	compiler := cfg.Compiler
	if !filepath.IsAbs(compiler) {
		compiler = filepath.Join(cfg.Root, compiler)
	}

	info, err := os.Stat(compiler)
	if err != nil {
		return nil, eris.Wrapf(err, "compiler %s not found under toolchain root %s", cfg.Compiler, cfg.Root)
	}

	if info.IsDir() {
		return nil, eris.Errorf("compiler path %s is a directory", compiler)
	}

	includeDirs := make([]string, 0, len(cfg.IncludeGlobs))
	for _, glob := range cfg.IncludeGlobs {
		matches, err := rules.ResolveSources(cfg.Root, glob)
		if err != nil {
			return nil, err
		}

		dirs := make([]string, 0, len(matches))
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, eris.Wrapf(err, "failed to check %s", match)
			}

			if info.IsDir() {
				dirs = append(dirs, match)
			}
		}

		switch len(dirs) {
		case 0:
			zerolog.Ctx(ctx).Warn().
				Str("glob", glob).
				Msg("include glob matched no directories")
		case 1:
			includeDirs = append(includeDirs, dirs[0])
		default:
			return nil, &AmbiguousIncludeError{Glob: glob, Candidates: dirs}
		}
	}

	return &Toolchain{
		Root:        cfg.Root,
		Compiler:    compiler,
		IncludeDirs: includeDirs,
	}, nil
}
