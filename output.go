package cmdassert

import "strings"

// OutputKind selects which captured stream an [OutputAssertion] tests.
type OutputKind string

const (
	OutStdout OutputKind = "stdout"
	OutStderr OutputKind = "stderr"
)

// OutputAssertion is a single check of one captured stream against expected
// text. Fuzzy selects substring containment over exact equality;
// ExpectedResult is the truth value the raw outcome must match, false under
// negation.
type OutputAssertion struct {
	Expect         string
	Fuzzy          bool
	ExpectedResult bool
	Kind           OutputKind
}

// check compares the assertion against the captured streams, returning a
// non-nil *OutputMismatchError when the outcome does not match ExpectedResult.
func (a OutputAssertion) check(cmd []string, outcome *Outcome) error {
	stdout := lossyString(outcome.Stdout)
	stderr := lossyString(outcome.Stderr)

	text := stdout
	if a.Kind == OutStderr {
		text = stderr
	}

	var got bool
	if a.Fuzzy {
		got = strings.Contains(text, a.Expect)
	} else {
		got = text == a.Expect
	}

	if got != a.ExpectedResult {
		return &OutputMismatchError{
			Cmd:       cmd,
			Assertion: a,
			Stdout:    stdout,
			Stderr:    stderr,
		}
	}
	return nil
}

// OutputAssertionBuilder attaches one output predicate to an in-progress
// [Assert]. It only exists between a stream selector ([Assert.Stdout] or
// [Assert.Stderr]) and a finalizer; every finalizer appends the predicate
// and hands back the parent Assert.
type OutputAssertionBuilder struct {
	assert         *Assert
	kind           OutputKind
	expectedResult bool
}

// Not flips the required truth value of the next finalizer. It can be
// chained; each call flips again.
func (b *OutputAssertionBuilder) Not() *OutputAssertionBuilder {
	b.expectedResult = !b.expectedResult
	return b
}

// Contains finalizes a substring-containment predicate.
func (b *OutputAssertionBuilder) Contains(text string) *Assert {
	return b.finish(text, true)
}

// Is finalizes an exact-equality predicate. No trimming is applied: trailing
// newlines count.
func (b *OutputAssertionBuilder) Is(text string) *Assert {
	return b.finish(text, false)
}

// DoesntContain is shorthand for Not().Contains(text).
func (b *OutputAssertionBuilder) DoesntContain(text string) *Assert {
	return b.Not().Contains(text)
}

// Isnt is shorthand for Not().Is(text).
func (b *OutputAssertionBuilder) Isnt(text string) *Assert {
	return b.Not().Is(text)
}

func (b *OutputAssertionBuilder) finish(text string, fuzzy bool) *Assert {
	b.assert.expectOutput = append(b.assert.expectOutput, OutputAssertion{
		Expect:         text,
		Fuzzy:          fuzzy,
		ExpectedResult: b.expectedResult,
		Kind:           b.kind,
	})
	return b.assert
}
