// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/alibaba/opensandbox/hostmon/pkg/log"
)

// Status tags the outcome of a command run.
type Status int

const (
	StatusOK Status = iota
	StatusTimeout
	StatusNotFound
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTimeout:
		return "timeout"
	case StatusNotFound:
		return "not-found"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the captured stdout of a command plus how it ended.
type Result struct {
	Status   Status
	Output   string
	ExitCode int
	Cause    error
}

// OK reports whether the command exited cleanly.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Err renders a non-OK result as an error, nil otherwise.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	if r.Cause != nil {
		return fmt.Errorf("command %s: %w", r.Status, r.Cause)
	}
	return fmt.Errorf("command %s", r.Status)
}

// Runner executes a named external utility.
type Runner interface {
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) Result
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, timeout time.Duration, name string, args ...string) Result

func (f RunnerFunc) Run(ctx context.Context, timeout time.Duration, name string, args ...string) Result {
	return f(ctx, timeout, name, args...)
}

// ExecRunner runs commands as child processes and captures their stdout.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

var _ Runner = (*ExecRunner)(nil)

// Run starts name with args and waits for it, killing it once timeout elapses.
func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startAt := time.Now()
	err := cmd.Run()
	log.Debug("command %s %v finished in %s", name, args, time.Since(startAt))
	if err == nil {
		return Result{Status: StatusOK, Output: stdout.String()}
	}

	if errors.Is(err, exec.ErrNotFound) {
		return Result{Status: StatusNotFound, ExitCode: -1, Cause: err}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Result{Status: StatusTimeout, Output: stdout.String(), ExitCode: -1, Cause: ctx.Err()}
	}

	exitCode := -1
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		exitCode = exitError.ExitCode()
		if stderr.Len() > 0 {
			err = fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
	}
	return Result{Status: StatusFailed, Output: stdout.String(), ExitCode: exitCode, Cause: err}
}
