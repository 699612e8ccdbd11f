// Package cmdassert is a fluent assertion library for the observable
// behavior of external command-line programs: their exit status, exit code,
// and captured stdout/stderr text.
//
// An [Assert] describes one planned invocation and its expectations; a
// terminal call ([Assert.Execute] or [Assert.Unwrap]) spawns the process,
// captures its output, and checks every expectation in order.
//
//	cmdassert.Command("echo", "42").
//		Stdout().Contains("42").
//		Unwrap(t)
package cmdassert

import (
	"errors"
	"io"
	"testing"
)

// Assert accumulates one command invocation and the expectations to check
// against it. Builder calls mutate and return the same value; build one chain
// per Assert and consume it exactly once with a terminal call.
type Assert struct {
	cmd            []string
	dir            string
	env            map[string]string
	stdin          io.Reader
	expectSuccess  *bool
	expectExitCode *int
	expectOutput   []OutputAssertion
	spawner        Spawner
}

// Main runs the project's main binary via `go run .`.
//
// Defaults to expecting successful execution.
func Main() *Assert {
	return Command("go", "run", ".")
}

// Binary runs the named binary of the current project via `go run ./cmd/<name>`.
//
// Defaults to expecting successful execution.
func Binary(name string) *Assert {
	return Command("go", "run", "./cmd/"+name)
}

// Command runs an arbitrary command; argv[0] is the executable.
//
// Defaults to expecting successful execution.
func Command(argv ...string) *Assert {
	expectSuccess := true
	return &Assert{
		cmd:           argv,
		expectSuccess: &expectSuccess,
		spawner:       osSpawner{},
	}
}

// WithArgs appends arguments to the command.
func (a *Assert) WithArgs(args ...string) *Assert {
	a.cmd = append(a.cmd, args...)
	return a
}

// CurrentDir sets the working directory for the command. When unset the
// child inherits the caller's working directory.
func (a *Assert) CurrentDir(dir string) *Assert {
	a.dir = dir
	return a
}

// WithEnv sets environment variables for the child, layered over the
// environment inherited from the calling process.
func (a *Assert) WithEnv(env map[string]string) *Assert {
	if a.env == nil {
		a.env = map[string]string{}
	}
	for k, v := range env {
		a.env[k] = v
	}
	return a
}

// WithStdin feeds r to the child's standard input.
func (a *Assert) WithStdin(r io.Reader) *Assert {
	a.stdin = r
	return a
}

// WithSpawner replaces the OS process boundary, letting tests exercise
// assertion logic against a fake [Spawner].
func (a *Assert) WithSpawner(s Spawner) *Assert {
	a.spawner = s
	return a
}

// And is an identity call to make chains read better.
func (a *Assert) And() *Assert {
	return a
}

// Succeeds requires the command to exit successfully, clearing any exit-code
// requirement set earlier.
func (a *Assert) Succeeds() *Assert {
	expectSuccess := true
	a.expectSuccess = &expectSuccess
	a.expectExitCode = nil
	return a
}

// Fails requires the command to run and exit unsuccessfully. A command that
// cannot be started at all is a [CommandNotRunnableError], not a pass.
//
// An exit-code requirement set earlier is left in place.
func (a *Assert) Fails() *Assert {
	expectSuccess := false
	a.expectSuccess = &expectSuccess
	return a
}

// FailsWith requires the command to exit unsuccessfully with exactly this
// exit code, overriding any earlier Succeeds, Fails, or FailsWith call.
func (a *Assert) FailsWith(code int) *Assert {
	expectSuccess := false
	a.expectSuccess = &expectSuccess
	a.expectExitCode = &code
	return a
}

// Stdout starts an assertion against the command's captured stdout.
func (a *Assert) Stdout() *OutputAssertionBuilder {
	return &OutputAssertionBuilder{assert: a, kind: OutStdout, expectedResult: true}
}

// Stderr starts an assertion against the command's captured stderr.
func (a *Assert) Stderr() *OutputAssertionBuilder {
	return &OutputAssertionBuilder{assert: a, kind: OutStderr, expectedResult: true}
}

// Execute runs the command and checks every expectation in order, blocking
// until the child exits and both output streams are fully drained. There is
// no timeout: a child that never exits hangs the caller.
//
// Checks run in a fixed order and stop at the first failure: spawn, exit
// status, exit code, then each output predicate in the order it was appended.
// The returned error is one of [CommandNotRunnableError],
// [StatusMismatchError], [ExitCodeMismatchError], or [OutputMismatchError];
// every mismatch carries both complete captured streams.
func (a *Assert) Execute() error {
	if len(a.cmd) == 0 || a.cmd[0] == "" {
		return &CommandNotRunnableError{Cmd: a.cmd, Err: errors.New("empty command")}
	}

	outcome, err := a.spawner.Spawn(a.cmd, SpawnOptions{
		Dir:   a.dir,
		Env:   a.env,
		Stdin: a.stdin,
	})
	if err != nil {
		return &CommandNotRunnableError{Cmd: a.cmd, Err: err}
	}

	if a.expectSuccess != nil && *a.expectSuccess != outcome.Success {
		return &StatusMismatchError{
			Cmd:           a.cmd,
			ExpectSuccess: *a.expectSuccess,
			Stdout:        lossyString(outcome.Stdout),
			Stderr:        lossyString(outcome.Stderr),
		}
	}

	if a.expectExitCode != nil && (outcome.Code == nil || *a.expectExitCode != *outcome.Code) {
		return &ExitCodeMismatchError{
			Cmd:      a.cmd,
			Expected: a.expectExitCode,
			Actual:   outcome.Code,
			Stdout:   lossyString(outcome.Stdout),
			Stderr:   lossyString(outcome.Stderr),
		}
	}

	for _, assertion := range a.expectOutput {
		if err := assertion.check(a.cmd, outcome); err != nil {
			return err
		}
	}

	return nil
}

// Unwrap runs [Assert.Execute] and fails the test fatally when any
// expectation does not hold, with the full diagnostic as the message.
func (a *Assert) Unwrap(t testing.TB) {
	t.Helper()
	if err := a.Execute(); err != nil {
		t.Fatal(err)
	}
}
