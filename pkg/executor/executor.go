// Package executor runs materialized compiler invocations. It is the only
// place that starts external processes; the engine just hands it an argv.
package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/rotisserie/eris"

	"github.com/linhlhq/unollvm/pkg/rules"
)

// Executor implements rules.ProcessRunner on top of os/exec. The process
// inherits the environment, stdout passes through and stderr is both shown
// and captured so failures can be reported with their diagnostics attached.
type Executor struct{}

func New() *Executor {
	return &Executor{}
}

func (e *Executor) Run(ctx context.Context, dir string, argv []string) (rules.ProcessResult, error) {
	if len(argv) == 0 {
		return rules.ProcessResult{ExitCode: -1}, eris.New("empty command")
	}

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return rules.ProcessResult{ExitCode: exitErr.ExitCode(), Stderr: stderr.Bytes()}, nil
		}

		return rules.ProcessResult{ExitCode: -1}, eris.Wrapf(err, "failed to start %s", argv[0])
	}

	return rules.ProcessResult{Stderr: stderr.Bytes()}, nil
}
