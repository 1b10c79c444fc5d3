// Package shell is the subprocess boundary for version-control queries
// and external formatter commands. Every call blocks the calling
// goroutine for the full lifetime of the process; there are no
// timeouts — a hanging command hangs the formatting pass that issued
// it.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

type Request struct {
	Dir   string
	Name  string
	Args  []string
	Stdin []byte
}

type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Ok reports a zero exit code.
func (r *Result) Ok() bool {
	return r.ExitCode == 0
}

// Runner executes external commands. A non-zero exit code is reported
// in the Result, not as an error; the error return is reserved for
// failures to spawn the process at all.
type Runner interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

type execRunner struct{}

func NewRunner() Runner {
	return &execRunner{}
}

func (execRunner) Run(ctx context.Context, req Request) (*Result, error) {
	cmd := exec.CommandContext(ctx, req.Name, req.Args...)
	cmd.Dir = req.Dir
	if req.Stdin != nil {
		cmd.Stdin = bytes.NewReader(req.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return nil, err
	}
	return res, nil
}
