package cmdassert_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/matgreaves/cmdassert"
	"github.com/matryer/is"
)

// fakeSpawner returns a canned outcome without starting a process.
type fakeSpawner struct {
	outcome cmdassert.Outcome
	err     error
}

func (f fakeSpawner) Spawn(argv []string, opts cmdassert.SpawnOptions) (*cmdassert.Outcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.outcome
	return &out, nil
}

func intPtr(n int) *int { return &n }

func TestStdoutContains(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		t.Parallel()
		is := is.New(t)
		is.NoErr(cmdassert.Command("echo", "42").Stdout().Contains("42").Execute())
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()
		err := cmdassert.Command("echo", "42").Stdout().Contains("zz").Execute()
		var mismatch *cmdassert.OutputMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected OutputMismatchError got %v", err)
		}
		is := is.New(t)
		is.Equal(mismatch.Assertion.Expect, "zz")
		is.Equal(mismatch.Assertion.Kind, cmdassert.OutStdout)
		is.True(mismatch.Assertion.Fuzzy)
	})
}

func TestStdoutIs(t *testing.T) {
	t.Parallel()

	t.Run("exact match includes the trailing newline", func(t *testing.T) {
		t.Parallel()
		is := is.New(t)
		is.NoErr(cmdassert.Command("echo", "42").Stdout().Is("42\n").Execute())
	})

	t.Run("no implicit trimming", func(t *testing.T) {
		t.Parallel()
		err := cmdassert.Command("echo", "42").Stdout().Is("42").Execute()
		var mismatch *cmdassert.OutputMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected OutputMismatchError got %v", err)
		}
	})
}

func TestStderr(t *testing.T) {
	t.Parallel()
	is := is.New(t)
	err := cmdassert.Command("sh", "-c", "echo oops 1>&2").
		Stderr().Contains("oops").
		And().
		Stdout().Is("").
		Execute()
	is.NoErr(err)
}

func TestNot(t *testing.T) {
	t.Parallel()

	t.Run("inverts one finalizer", func(t *testing.T) {
		t.Parallel()
		is := is.New(t)
		is.NoErr(cmdassert.Command("echo", "42").Stdout().Not().Contains("zz").Execute())
	})

	t.Run("fails when the text is present", func(t *testing.T) {
		t.Parallel()
		err := cmdassert.Command("echo", "42").Stdout().Not().Contains("42").Execute()
		var mismatch *cmdassert.OutputMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected OutputMismatchError got %v", err)
		}
		if mismatch.Assertion.ExpectedResult {
			t.Error("expected ExpectedResult to be false")
		}
	})

	t.Run("chaining flips again", func(t *testing.T) {
		t.Parallel()
		is := is.New(t)
		is.NoErr(cmdassert.Command("echo", "42").Stdout().Not().Not().Contains("42").Execute())
	})
}

func TestDoesntContain(t *testing.T) {
	t.Parallel()
	is := is.New(t)
	is.NoErr(cmdassert.Command("echo", "42").Stdout().DoesntContain("zz").Execute())
	is.NoErr(cmdassert.Command("echo", "42").Stdout().Isnt("zz").Execute())
}

func TestPredicateOrder(t *testing.T) {
	t.Parallel()

	t.Run("evaluated in append order, fail fast", func(t *testing.T) {
		t.Parallel()
		spawner := fakeSpawner{outcome: cmdassert.Outcome{
			Stdout:  []byte("actual"),
			Success: true,
			Code:    intPtr(0),
		}}
		// both predicates fail; only the first may surface
		err := cmdassert.Command("fake").
			WithSpawner(spawner).
			Stdout().Contains("first-needle").
			Stdout().Contains("second-needle").
			Execute()
		var mismatch *cmdassert.OutputMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected OutputMismatchError got %v", err)
		}
		is := is.New(t)
		is.Equal(mismatch.Assertion.Expect, "first-needle")
		is.True(!strings.Contains(err.Error(), "second-needle"))
	})

	t.Run("later predicates still run when earlier ones pass", func(t *testing.T) {
		t.Parallel()
		spawner := fakeSpawner{outcome: cmdassert.Outcome{
			Stdout:  []byte("actual"),
			Success: true,
			Code:    intPtr(0),
		}}
		err := cmdassert.Command("fake").
			WithSpawner(spawner).
			Stdout().Contains("actual").
			Stdout().Contains("second-needle").
			Execute()
		var mismatch *cmdassert.OutputMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("expected OutputMismatchError got %v", err)
		}
		is.New(t).Equal(mismatch.Assertion.Expect, "second-needle")
	})
}

func TestLossyDecoding(t *testing.T) {
	t.Parallel()
	// invalid UTF-8 never fails a decode; each invalid run becomes the
	// replacement rune
	spawner := fakeSpawner{outcome: cmdassert.Outcome{
		Stdout:  []byte{'o', 'k', 0xff, 0xfe},
		Success: true,
		Code:    intPtr(0),
	}}
	is := is.New(t)
	err := cmdassert.Command("fake").
		WithSpawner(spawner).
		Stdout().Contains("ok").
		And().
		Stdout().Is("ok�").
		Execute()
	is.NoErr(err)
}

func TestSignalTermination(t *testing.T) {
	t.Parallel()
	// a process killed by a signal has no exit code; that mismatches any
	// expected code
	spawner := fakeSpawner{outcome: cmdassert.Outcome{Success: false, Code: nil}}
	err := cmdassert.Command("fake").
		WithSpawner(spawner).
		FailsWith(9).
		Execute()
	var mismatch *cmdassert.ExitCodeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ExitCodeMismatchError got %v", err)
	}
	is := is.New(t)
	is.Equal(*mismatch.Expected, 9)
	is.Equal(mismatch.Actual, (*int)(nil))
}

func TestChecksRunInOrder(t *testing.T) {
	t.Parallel()
	// status is checked before output, so the status mismatch wins even
	// though the output predicate would also fail
	spawner := fakeSpawner{outcome: cmdassert.Outcome{
		Stdout:  []byte("actual"),
		Success: false,
		Code:    intPtr(1),
	}}
	err := cmdassert.Command("fake").
		WithSpawner(spawner).
		Stdout().Contains("needle").
		Execute()
	var mismatch *cmdassert.StatusMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected StatusMismatchError got %v", err)
	}
}
