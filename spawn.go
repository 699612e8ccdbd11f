package cmdassert

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
)

var _ Spawner = osSpawner{}

// Spawner is the boundary to the OS process facility: run one command to
// completion and hand back everything it observably did.
//
// The default implementation wraps [os/exec]. Inject an alternative with
// [Assert.WithSpawner] to test assertion logic without starting real
// processes.
type Spawner interface {
	Spawn(argv []string, opts SpawnOptions) (*Outcome, error)
}

// SpawnOptions carries the per-invocation settings a [Spawner] must honour.
type SpawnOptions struct {
	// working directory; empty means inherit the caller's
	Dir string
	// extra environment variables, layered over the inherited environment
	Env map[string]string
	// the child's standard input
	Stdin io.Reader
}

// Outcome is everything observable about one finished process.
type Outcome struct {
	Stdout  []byte
	Stderr  []byte
	Success bool
	// Code is nil when the process terminated without a numeric exit code,
	// such as being killed by a signal.
	Code *int
}

// osSpawner runs commands via [os/exec], blocking until the child exits and
// both output streams are fully drained.
type osSpawner struct{}

func (osSpawner) Spawn(argv []string, opts SpawnOptions) (*Outcome, error) {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(path, argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Stdin = opts.Stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if len(opts.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	err = cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// the process never ran; distinct from running and failing
		return nil, err
	}

	state := cmd.ProcessState
	out := &Outcome{
		Stdout:  stdout.Bytes(),
		Stderr:  stderr.Bytes(),
		Success: state.Success(),
	}
	if state.Exited() {
		code := state.ExitCode()
		out.Code = &code
	}
	return out, nil
}
