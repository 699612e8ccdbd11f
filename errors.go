package cmdassert

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"al.essio.dev/pkg/shellescape"
	"github.com/google/go-cmp/cmp"
)

// CommandNotRunnableError reports that the process could not be started at
// all, e.g. the executable was not found or not executable. This is distinct
// from the command running and failing an expectation.
type CommandNotRunnableError struct {
	Cmd []string
	Err error
}

func (e *CommandNotRunnableError) Error() string {
	return fmt.Sprintf("cmdassert: command `%s` could not be run: %v", shellescape.QuoteCommand(e.Cmd), e.Err)
}

func (e *CommandNotRunnableError) Unwrap() error {
	return e.Err
}

// StatusMismatchError reports that the process's exit status did not match
// the expected success flag.
type StatusMismatchError struct {
	Cmd           []string
	ExpectSuccess bool
	Stdout        string
	Stderr        string
}

func (e *StatusMismatchError) Error() string {
	verb := "succeed"
	if !e.ExpectSuccess {
		verb = "fail"
	}
	return fmt.Sprintf("cmdassert: command `%s` was expected to %s but did not\n%s",
		shellescape.QuoteCommand(e.Cmd), verb, formatStreams(e.Stdout, e.Stderr))
}

// ExitCodeMismatchError reports that the process's numeric exit code did not
// match the expected one. Actual is nil when the process terminated without
// an exit code, such as being killed by a signal.
type ExitCodeMismatchError struct {
	Cmd      []string
	Expected *int
	Actual   *int
	Stdout   string
	Stderr   string
}

func (e *ExitCodeMismatchError) Error() string {
	return fmt.Sprintf("cmdassert: command `%s` expected exit code %s, got %s\n%s",
		shellescape.QuoteCommand(e.Cmd), formatCode(e.Expected), formatCode(e.Actual),
		formatStreams(e.Stdout, e.Stderr))
}

// OutputMismatchError reports the first output predicate whose outcome did
// not match its required truth value. Stdout and Stderr always carry both
// complete captured streams, whichever one the predicate tested.
type OutputMismatchError struct {
	Cmd       []string
	Assertion OutputAssertion
	Stdout    string
	Stderr    string
}

func (e *OutputMismatchError) Error() string {
	a := e.Assertion
	verb, failure := "contain", "did not"
	if !a.Fuzzy {
		verb, failure = "be", "was not"
	}
	if !a.ExpectedResult {
		// the predicate held when it was required not to
		if a.Fuzzy {
			failure = "did"
		} else {
			failure = "was"
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "cmdassert: command `%s` %s was expected %sto %s %q but %s\n",
		shellescape.QuoteCommand(e.Cmd), a.Kind, negation(a.ExpectedResult), verb, a.Expect, failure)
	if !a.Fuzzy && a.ExpectedResult {
		// exact matches benefit from seeing exactly where the texts diverge
		fmt.Fprintf(&b, "diff (-want +got):\n%s", cmp.Diff(a.Expect, e.streamText()))
	}
	b.WriteString(formatStreams(e.Stdout, e.Stderr))
	return b.String()
}

func (e *OutputMismatchError) streamText() string {
	if e.Assertion.Kind == OutStderr {
		return e.Stderr
	}
	return e.Stdout
}

func negation(expectedResult bool) string {
	if expectedResult {
		return ""
	}
	return "not "
}

func formatCode(code *int) string {
	if code == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *code)
}

// formatStreams renders both captured streams so any failure is diagnosable
// without re-running the command.
func formatStreams(stdout, stderr string) string {
	return fmt.Sprintf("stdout:\n%s\nstderr:\n%s", stdout, stderr)
}

// lossyString decodes captured bytes as UTF-8, substituting the replacement
// character for invalid sequences rather than failing.
func lossyString(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
