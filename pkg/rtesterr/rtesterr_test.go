package rtesterr_test

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/specvital/rtest-go/pkg/rtesterr"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&rtesterr.ParseError{Path: "test_a.py", Line: 3, Message: "bad token"}, "parse error in test_a.py at line 3: bad token"},
		{&rtesterr.ParseError{Path: "test_a.py", Message: "bad token"}, "parse error in test_a.py: bad token"},
		{&rtesterr.ImportError{Module: "pkg.mod", Message: "not found"}, `import error in module "pkg.mod": not found`},
		{&rtesterr.SkipError{Nodeid: "a.py::t", Reason: "unsupported"}, "skipped a.py::t: unsupported"},
		{&rtesterr.InvalidWorkerCountError{Requested: 0, Min: 1, Max: 64}, "invalid worker count 0: must be between 1 and 64"},
		{&rtesterr.SpawnError{WorkerID: 2, Command: "pytest", Err: errors.New("no such file")}, `failed to spawn worker 2: command "pytest" failed: no such file`},
		{&rtesterr.CrashError{WorkerID: 1, ExitCode: 9, Stderr: "killed"}, "worker 1 crashed with exit code 9: killed"},
		{&rtesterr.TimeoutError{WorkerID: 3, Duration: "30s"}, "worker 3 timed out after 30s"},
		{&rtesterr.InvalidValueError{Key: "dist", Value: "bogus", Expected: "a known mode"}, `invalid value for "dist": "bogus", expected a known mode`},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := fs.ErrNotExist
	wrapped := fmt.Errorf("collecting: %w", &rtesterr.IoError{Path: "test_a.py", Err: cause})

	var ioErr *rtesterr.IoError
	if !errors.As(wrapped, &ioErr) {
		t.Fatal("errors.As failed to find IoError in chain")
	}
	if ioErr.Path != "test_a.py" {
		t.Errorf("Path = %q, want %q", ioErr.Path, "test_a.py")
	}
	if !errors.Is(wrapped, fs.ErrNotExist) {
		t.Error("errors.Is failed to find the underlying cause through Unwrap")
	}
	if !strings.Contains(wrapped.Error(), "i/o error for test_a.py") {
		t.Errorf("unexpected message: %q", wrapped.Error())
	}
}
