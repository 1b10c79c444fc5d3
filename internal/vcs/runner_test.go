package vcs

import (
	"context"
	"strings"

	"modfmt/internal/shell"
)

// fakeRunner maps "name arg arg..." command lines to canned results.
// Unmapped commands exit 1, like a backend rejecting the query.
type fakeRunner struct {
	responses map[string]*shell.Result
	calls     []shell.Request
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: make(map[string]*shell.Result)}
}

func (f *fakeRunner) stub(cmdline, stdout string) {
	f.responses[cmdline] = &shell.Result{Stdout: []byte(stdout)}
}

func (f *fakeRunner) stubFailure(cmdline string, code int) {
	f.responses[cmdline] = &shell.Result{ExitCode: code, Stderr: []byte("fatal")}
}

func (f *fakeRunner) Run(_ context.Context, req shell.Request) (*shell.Result, error) {
	f.calls = append(f.calls, req)
	key := req.Name
	if len(req.Args) > 0 {
		key += " " + strings.Join(req.Args, " ")
	}
	if res, ok := f.responses[key]; ok {
		return res, nil
	}
	return &shell.Result{ExitCode: 1}, nil
}
