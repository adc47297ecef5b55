package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestBenchError_Error(t *testing.T) {
	err := New(ErrCategoryDataset, CodeUnknownDataset, "unknown dataset openfood2")
	expected := "[DATASET:UNKNOWN_DATASET] unknown dataset openfood2"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestBenchError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCategoryNetwork, CodeDownloadFailed, "download failed", cause)
	expected := "[NETWORK:DOWNLOAD_FAILED] download failed: connection refused"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestBenchError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryIO, CodeReadFailed, "read", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestBenchError_Is(t *testing.T) {
	err1 := New(ErrCategoryChecksum, CodeArchiveMismatch, "first")
	err2 := New(ErrCategoryChecksum, CodeArchiveMismatch, "second")
	err3 := New(ErrCategoryChecksum, CodeJSONMismatch, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
	if !errors.Is(err1, ErrArchiveChecksum) {
		t.Error("archive mismatch should match the ErrArchiveChecksum sentinel")
	}
	if errors.Is(err3, ErrArchiveChecksum) {
		t.Error("json mismatch must not match the archive sentinel")
	}
}

func TestBenchError_IsThroughWrapping(t *testing.T) {
	inner := New(ErrCategoryChecksum, CodeJSONMismatch, "bad digest")
	outer := fmt.Errorf("benchset openfood::vitamins_tags: %w", inner)
	if !errors.Is(outer, ErrJSONChecksum) {
		t.Error("sentinel should match through fmt.Errorf wrapping")
	}
}

func TestGetCategory(t *testing.T) {
	err := New(ErrCategoryEngine, CodeCompileFailed, "bad query")
	if GetCategory(err) != ErrCategoryEngine {
		t.Errorf("got %q, want %q", GetCategory(err), ErrCategoryEngine)
	}
	if GetCategory(fmt.Errorf("plain error")) != "" {
		t.Error("non-BenchError should return empty category")
	}
}

func TestGetCode(t *testing.T) {
	err := New(ErrCategoryEngine, CodeCompileFailed, "bad query")
	if GetCode(err) != CodeCompileFailed {
		t.Errorf("got %q, want %q", GetCode(err), CodeCompileFailed)
	}
	if GetCode(fmt.Errorf("plain error")) != "" {
		t.Error("non-BenchError should return empty code")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(ErrCategoryEngine, CodeRunFailed, "run failed")
	detailed := err.WithDetails(map[string]interface{}{"engine": "gojq"})

	if detailed.Details["engine"] != "gojq" {
		t.Error("WithDetails should set details")
	}
	// Original should be unmodified
	if err.Details != nil {
		t.Error("WithDetails should not modify original")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	cause := fmt.Errorf("io error")

	f := NewFilesystemError(CodeCreateFailed, "mkdir", cause)
	if f.Category != ErrCategoryFilesystem || !errors.Is(f, cause) {
		t.Error("NewFilesystemError mismatch")
	}

	i := NewIOError(CodeWriteFailed, "write", cause)
	if i.Category != ErrCategoryIO || i.Code != CodeWriteFailed {
		t.Error("NewIOError mismatch")
	}

	n := NewNetworkError(CodeDownloadFailed, "GET", cause)
	if n.Category != ErrCategoryNetwork || !errors.Is(n, ErrDownload) {
		t.Error("NewNetworkError mismatch")
	}

	e := NewEngineError(CodeLoadFailed, "load", cause)
	if e.Category != ErrCategoryEngine {
		t.Error("NewEngineError mismatch")
	}

	c := NewConfigError("data_dir is required")
	if c.Category != ErrCategoryConfig || c.Code != CodeInvalidConfig {
		t.Error("NewConfigError mismatch")
	}

	r := NewResultsError("insert", cause)
	if r.Category != ErrCategoryResults {
		t.Error("NewResultsError mismatch")
	}

	u := NewInternalError("unexpected", cause)
	if u.Category != ErrCategoryInternal || u.Code != CodeUnexpected {
		t.Error("NewInternalError mismatch")
	}
}
