package cmd

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/linhlhq/unollvm/pkg/rules"
)

func TestSplitOptionArgs(t *testing.T) {
	options, rest := splitOptionArgs([]string{"opt_level=-O2", "stray", "empty="})

	assert.Equal(t, map[string]string{"opt_level": "-O2", "empty": ""}, options)
	assert.Equal(t, []string{"stray"}, rest)
}

func TestSplitOptionArgsEmpty(t *testing.T) {
	options, rest := splitOptionArgs(nil)
	assert.Empty(t, options)
	assert.Empty(t, rest)
}

func TestExitCodePropagatesCompilerCode(t *testing.T) {
	err := &rules.ProcessError{Pair: rules.BuildPair{Output: "a.fla"}, ExitCode: 42}
	assert.Equal(t, 42, exitCode(err))
}

func TestExitCodeAggregateUsesFirstFailure(t *testing.T) {
	err := &rules.BuildError{Failures: []*rules.ProcessError{
		{Pair: rules.BuildPair{Output: "a.fla"}, ExitCode: -1, Err: eris.New("spawn failed")},
		{Pair: rules.BuildPair{Output: "b.fla"}, ExitCode: 3},
	}}
	assert.Equal(t, 3, exitCode(err))
}

func TestExitCodeStructuralErrorsMapToOne(t *testing.T) {
	assert.Equal(t, 1, exitCode(eris.New("no rules file")))
}
