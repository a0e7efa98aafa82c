package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/linhlhq/unollvm/pkg/rules"
)

const rulesFileName = "build.star"

// setupContext builds the logger from the persistent flags and attaches it to
// the command's context.
func setupContext(cmd *cobra.Command) (context.Context, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(NewConsoleWriter()).Level(level)
	return rules.WithLogger(cmd.Context(), &logger), nil
}

// findRulesFile searches the working directory and its parents for the
// nearest rules file, mirroring how make picks up its Makefile.
func findRulesFile() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", eris.Wrap(err, "failed to retrieve the current working directory")
	}

	path := wd
	for {
		rulesPath := filepath.Join(path, rulesFileName)
		_, err := os.Stat(rulesPath)
		if err == nil {
			return rulesPath, nil
		}
		if !eris.Is(err, os.ErrNotExist) {
			return "", eris.Wrapf(err, "failed to check %s", rulesPath)
		}

		parent := filepath.Dir(path)
		if parent == path {
			return "", eris.Errorf("no %s file found in %s or any parent directory", rulesFileName, wd)
		}

		path = parent
	}
}

// splitOptionArgs separates name=value option overrides from plain arguments.
func splitOptionArgs(args []string) (map[string]string, []string) {
	options := make(map[string]string)
	rest := make([]string, 0, len(args))

	for _, part := range args {
		pos := strings.Index(part, "=")
		if pos > -1 {
			options[part[:pos]] = part[pos+1:]
		} else {
			rest = append(rest, part)
		}
	}

	return options, rest
}

// loadConfig finds and parses the rules file. Positional arguments are only
// accepted as name=value option overrides.
func loadConfig(ctx context.Context, args []string) (*rules.Config, string, error) {
	options, rest := splitOptionArgs(args)
	if len(rest) > 0 {
		return nil, "", eris.Errorf("unexpected argument %s, only name=value options are accepted", rest[0])
	}

	rulesPath, err := findRulesFile()
	if err != nil {
		return nil, "", err
	}

	cfg, err := rules.ParseFile(ctx, rulesPath, options)
	if err != nil {
		return nil, "", err
	}

	return cfg, rulesPath, nil
}
