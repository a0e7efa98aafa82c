package rules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
)

// normalizePath anchors a path from the rules file in the file's directory.
// A leading ~ refers to the user's home directory.
func normalizePath(baseDir, path string) (string, error) {
	if path == "" {
		return filepath.Clean(baseDir), nil
	}

	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}

	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded), nil
	}

	return filepath.Join(baseDir, expanded), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", eris.Wrap(err, "failed to resolve the home directory")
	}

	return filepath.Join(home, path[1:]), nil
}

func stringList(input *starlark.List, field string) ([]string, error) {
	if input == nil {
		return []string{}, nil
	}

	result := make([]string, 0, input.Len())
	iter := input.Iterate()
	defer iter.Done()

	var item starlark.Value
	for iter.Next(&item) {
		switch value := item.(type) {
		case starlark.String:
			result = append(result, value.GoString())
		default:
			return nil, eris.Errorf("expected all items in %s to be strings but found %s", field, item.Type())
		}
	}

	return result, nil
}
