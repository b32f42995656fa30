// Package test contains assertion helpers shared by package tests.
package test

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	parsing "github.com/klahnakoski/mo-parsing-sub000"
)

func fatalf(t *testing.T, message string, params ...any) {
	t.Helper()
	if len(params) > 0 {
		message = fmt.Sprintf(message, params...)
	}
	_, thisFile, _, _ := runtime.Caller(0)
	file := thisFile
	line := 0
	for i := 2; file == thisFile; i++ {
		_, file, line, _ = runtime.Caller(i)
	}
	t.Fatalf("%s at %s:%d", message, file, line)
}

func Assert(t *testing.T, cond bool, message string, params ...any) {
	t.Helper()
	if !cond {
		fatalf(t, message, params...)
	}
}

func ExpectBool(t *testing.T, expected, got bool) {
	t.Helper()
	if expected != got {
		fatalf(t, "expecting %v, got %v", expected, got)
	}
}

func ExpectInt(t *testing.T, expected, got int) {
	t.Helper()
	if expected != got {
		fatalf(t, "expecting %d, got %d", expected, got)
	}
}

// ExpectErrorCode checks that e (or an error it wraps) carries the expected code.
func ExpectErrorCode(t *testing.T, expected int, e error) {
	t.Helper()
	if e != nil && parsing.ErrorCode(e) == expected {
		return
	}

	fatalf(t, "expecting error code %d, got %v", expected, e)
}

// ExpectValues deep-compares nested token lists.
func ExpectValues(t *testing.T, expected, got []any) {
	t.Helper()
	if diff := cmp.Diff(expected, got); diff != "" {
		fatalf(t, "values mismatch (-expected +got):\n%s", diff)
	}
}
