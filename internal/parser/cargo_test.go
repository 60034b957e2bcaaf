package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctp/internal/domain"
)

const failingOutput = "   Compiling mycrate v0.1.0 (/work/mycrate)\n" +
	"    Finished `test` profile [unoptimized + debuginfo] target(s) in 0.52s\n" +
	"     Running unittests src/lib.rs (target/debug/deps/mycrate-5f1c2a)\n" +
	"\n" +
	"running 4 tests\n" +
	"test parser::tests::parses ... ok\n" +
	"test tests::it_works ... ok\n" +
	"test tests::slow ... ignored, needs network\n" +
	"test tests::it_fails ... FAILED\n" +
	"\n" +
	"failures:\n" +
	"\n" +
	"---- tests::it_fails stdout ----\n" +
	"thread 'tests::it_fails' panicked at src/lib.rs:12:9:\n" +
	"assertion `left == right` failed\n" +
	"  left: 1\n" +
	" right: 2\n" +
	"note: run with `RUST_BACKTRACE=1` environment variable to display a backtrace\n" +
	"\n" +
	"\n" +
	"failures:\n" +
	"    tests::it_fails\n" +
	"\n" +
	"test result: FAILED. 2 passed; 1 failed; 1 ignored; 0 measured; 0 filtered out; finished in 0.00s\n" +
	"\n" +
	"     Running tests/api.rs (target/debug/deps/api-99aa01)\n" +
	"\n" +
	"running 2 tests\n" +
	"test create_user ... ok\n" +
	"test delete_user ... FAILED\n" +
	"\n" +
	"failures:\n" +
	"\n" +
	"---- delete_user stdout ----\n" +
	"thread 'delete_user' panicked at 'user still exists', tests/api.rs:40:5\n" +
	"stack backtrace:\n" +
	"   0: rust_begin_unwind\n" +
	"             at /rustc/abc/library/std/src/panicking.rs:645:5\n" +
	"   1: api::delete_user\n" +
	"             at ./tests/api.rs:40:5\n" +
	"\n" +
	"failures:\n" +
	"    delete_user\n" +
	"\n" +
	"test result: FAILED. 1 passed; 1 failed; 0 ignored; 0 measured; 0 filtered out; finished in 0.01s\n" +
	"\n" +
	"   Doc-tests mycrate\n" +
	"\n" +
	"running 1 test\n" +
	"test src/lib.rs - add (line 3) ... ok\n" +
	"\n" +
	"test result: ok. 1 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out; finished in 0.10s\n"

func failingResult() domain.TestResult {
	return domain.TestResult{
		Package: "mycrate",
		Success: false,
		Output:  failingOutput,
		Error:   errors.New("exit status 101"),
	}
}

func TestCargoParser_ParseTestCounts(t *testing.T) {
	p := NewCargoParser()

	passed, failed := p.ParseTestCounts(failingResult())
	assert.Equal(t, 4, passed)
	assert.Equal(t, 2, failed)

	t.Run("fallback without summary", func(t *testing.T) {
		passed, failed := p.ParseTestCounts(domain.TestResult{Success: true})
		assert.Equal(t, 1, passed)
		assert.Equal(t, 0, failed)

		passed, failed = p.ParseTestCounts(domain.TestResult{Success: false, Output: "error[E0425]: cannot find value"})
		assert.Equal(t, 0, passed)
		assert.Equal(t, 1, failed)
	})
}

func TestCargoParser_ParseCases(t *testing.T) {
	cases := NewCargoParser().ParseCases(failingResult())
	require.Len(t, cases, 7)

	assert.Equal(t, domain.CaseResult{Package: "mycrate", Binary: "unittests src/lib.rs", Name: "parser::tests::parses", Status: domain.CasePassed}, cases[0])
	assert.Equal(t, domain.CaseIgnored, cases[2].Status)
	assert.Equal(t, domain.CaseFailed, cases[3].Status)
	assert.Equal(t, "tests/api.rs", cases[5].Binary)
	assert.Equal(t, "delete_user", cases[5].Name)
	assert.Equal(t, domain.DocTestsBinary, cases[6].Binary)
	assert.Equal(t, "src/lib.rs - add (line 3)", cases[6].Name)
}

func TestCargoParser_ParseFailure(t *testing.T) {
	failures := NewCargoParser().ParseFailure(failingResult())
	require.Len(t, failures, 2)

	first := failures[0]
	assert.Equal(t, "tests::it_fails", first.TestName)
	assert.Equal(t, "mycrate", first.Package)
	assert.Equal(t, "unittests src/lib.rs", first.Binary)
	assert.Equal(t, "src/lib.rs", first.File)
	assert.Equal(t, 12, first.Line)
	assert.Equal(t, "1", first.Left)
	assert.Equal(t, "2", first.Right)
	assert.Equal(t, "assertion `left == right` failed\n  left: 1\n right: 2", first.Message)
	assert.Len(t, first.StackTrace, 5)

	second := failures[1]
	assert.Equal(t, "delete_user", second.TestName)
	assert.Equal(t, "tests/api.rs", second.Binary)
	assert.Equal(t, "tests/api.rs", second.File)
	assert.Equal(t, 40, second.Line)
	assert.Equal(t, "user still exists", second.Message)
	assert.Contains(t, second.StackTrace, "             at ./tests/api.rs:40:5")
}

func TestCargoParser_ParseFailure_ColoredOutput(t *testing.T) {
	result := domain.TestResult{
		Package: "mycrate",
		Output: "test \x1b[31mtests::boom\x1b[0m ... \x1b[31mFAILED\x1b[0m\n" +
			"---- tests::boom stdout ----\n" +
			"thread 'tests::boom' panicked at src/boom.rs:3:5:\n" +
			"boom\n",
	}
	p := NewCargoParser()

	failures := p.ParseFailure(result)
	require.Len(t, failures, 1)
	assert.Equal(t, "src/boom.rs", failures[0].File)
	assert.Equal(t, "boom", failures[0].Message)

	cases := p.ParseCases(result)
	require.Len(t, cases, 1)
	assert.Equal(t, "tests::boom", cases[0].Name)
}

func TestCargoParser_ParseFailure_BuildError(t *testing.T) {
	result := domain.TestResult{
		Package: "broken",
		Success: false,
		Output: "   Compiling broken v0.1.0\n" +
			"error[E0425]: cannot find value `x` in this scope\n" +
			" --> src/lib.rs:2:5\n",
		Error: errors.New("exit status 101"),
	}
	failures := NewCargoParser().ParseFailure(result)
	require.Len(t, failures, 1)
	assert.Equal(t, BuildFailure, failures[0].TestName)
	assert.Equal(t, "error[E0425]: cannot find value `x` in this scope", failures[0].Message)
	assert.Len(t, failures[0].StackTrace, 3)
}

func TestCargoParser_ParseFailure_Success(t *testing.T) {
	result := domain.TestResult{
		Package: "ok",
		Success: true,
		Output:  "test a ... ok\n\ntest result: ok. 1 passed; 0 failed; 0 ignored; 0 measured; 0 filtered out\n",
	}
	assert.Empty(t, NewCargoParser().ParseFailure(result))
}

func TestPanicLocation(t *testing.T) {
	file, line, msg := panicLocation("thread 'main' panicked at src/main.rs:7:3:")
	assert.Equal(t, "src/main.rs", file)
	assert.Equal(t, 7, line)
	assert.Empty(t, msg)

	file, line, msg = panicLocation("thread 'a' panicked at 'called `Option::unwrap()` on a `None` value', src/x.rs:1:2")
	assert.Equal(t, "src/x.rs", file)
	assert.Equal(t, 1, line)
	assert.Equal(t, "called `Option::unwrap()` on a `None` value", msg)

	file, line, _ = panicLocation("thread 'a' panicked at somewhere")
	assert.Empty(t, file)
	assert.Zero(t, line)
}
