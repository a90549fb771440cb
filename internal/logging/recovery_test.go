package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelDebug)
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel(LevelWarn)
	})
	return &buf
}

func TestRecover(t *testing.T) {
	buf := captureOutput(t)
	executed := false

	func() {
		defer Recover("countdown")
		executed = true
		panic("tick failed")
	}()

	if !executed {
		t.Error("function should have executed before panic")
	}
	out := buf.String()
	if !strings.Contains(out, `"event":"panic_recovered"`) || !strings.Contains(out, `"component":"countdown"`) {
		t.Errorf("expected panic_recovered event, got %s", out)
	}
	if !strings.Contains(out, "TestRecover") {
		t.Error("stack trace should contain test function name")
	}
}

func TestGuard(t *testing.T) {
	captureOutput(t)

	if err := Guard("doctor", func() error { return nil }); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	plain := errors.New("plain")
	if err := Guard("doctor", func() error { return plain }); err != plain {
		t.Errorf("expected fn error unchanged, got %v", err)
	}

	err := Guard("doctor", func() error { panic("boom") })
	if !errors.Is(err, ErrPanic) {
		t.Fatalf("expected ErrPanic, got %v", err)
	}
	if err.Error() != "panic in doctor: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
