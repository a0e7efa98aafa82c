package rules

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

func shellReadDir(path string) ([]os.FileInfo, error) {
	if path == "" {
		path = "."
	}

	return ioutil.ReadDir(path)
}

// ResolveSources expands a shell-style glob relative to dir and returns the
// matches sorted lexicographically so that the derived build pairs come out
// in a reproducible order. A pattern that matches nothing yields an empty
// result, not an error.
func ResolveSources(dir, pattern string) ([]string, error) {
	cfg := expand.Config{
		ReadDir:  shellReadDir,
		GlobStar: true,
	}

	item := filepath.ToSlash(filepath.Join(dir, pattern))

	parser := syntax.NewParser()
	words := make([]*syntax.Word, 0)
	err := parser.Words(strings.NewReader(item), func(w *syntax.Word) bool {
		words = append(words, w)
		return true
	})
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse pattern %s", item)
	}

	matches, err := expand.Fields(&cfg, words...)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to resolve pattern %s", item)
	}

	result := make([]string, 0, len(matches))
	for _, match := range matches {
		// If a pattern didn't match anything, it's returned as a result. Skip those results.
		if strings.Contains(match, "*") {
			continue
		}

		result = append(result, filepath.Clean(match))
	}

	sort.Strings(result)
	return result, nil
}

// DeriveTarget replaces the trailing fromSuffix of input with toSuffix. It
// never touches the filesystem.
func DeriveTarget(input, fromSuffix, toSuffix string) (string, error) {
	if fromSuffix == "" || !strings.HasSuffix(input, fromSuffix) {
		return "", &InvalidSuffixError{Input: input, Suffix: fromSuffix}
	}

	return input[:len(input)-len(fromSuffix)] + toSuffix, nil
}

// DerivePairs maps every source to its derived output. The mapping has to be
// a bijection; two sources resolving to the same output indicate a broken
// rule declaration and abort planning.
func DerivePairs(sources []string, fromSuffix, toSuffix string) ([]BuildPair, error) {
	pairs := make([]BuildPair, 0, len(sources))
	seen := make(map[string]string, len(sources))

	for _, input := range sources {
		output, err := DeriveTarget(input, fromSuffix, toSuffix)
		if err != nil {
			return nil, err
		}

		if prev, ok := seen[output]; ok {
			return nil, eris.Errorf("both %s and %s derive the same output %s", prev, input, output)
		}

		seen[output] = input
		pairs = append(pairs, BuildPair{Input: input, Output: output})
	}

	return pairs, nil
}
