package submit

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/me/trialq/internal/logging"
)

// writeScript drops an executable shell script standing in for sbatch.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixtures require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "fake-sbatch")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func newSbatch(t *testing.T, opts Options) *Sbatch {
	t.Helper()
	s, err := NewSbatch(opts, logging.Discard())
	if err != nil {
		t.Fatalf("NewSbatch: %v", err)
	}
	return s
}

func TestSubmit_Acknowledged(t *testing.T) {
	bin := writeScript(t, `echo "Submitted batch job 4242"`)
	s := newSbatch(t, Options{Bin: bin, Ack: "Submitted"})

	ok, msg := s.Submit(context.Background(), t.TempDir())
	if !ok {
		t.Fatalf("Submit not acknowledged, message: %q", msg)
	}
	if msg != "Submitted batch job 4242" {
		t.Errorf("message = %q", msg)
	}
}

func TestSubmit_RunsInTrialDirectory(t *testing.T) {
	bin := writeScript(t, `echo "Submitted from $(pwd)"`)
	s := newSbatch(t, Options{Bin: bin, Ack: "Submitted"})
	dir := t.TempDir()

	ok, msg := s.Submit(context.Background(), dir)
	if !ok {
		t.Fatalf("Submit not acknowledged, message: %q", msg)
	}
	// pwd may resolve symlinks (macOS /var vs /private/var), compare suffix.
	if !strings.HasSuffix(msg, filepath.Base(dir)) {
		t.Errorf("scheduler ran in %q, want trial dir %s", msg, dir)
	}
}

func TestSubmit_Rejected(t *testing.T) {
	bin := writeScript(t, `echo "sbatch: error: invalid partition" >&2; exit 1`)
	s := newSbatch(t, Options{Bin: bin, Ack: "Submitted"})

	ok, msg := s.Submit(context.Background(), t.TempDir())
	if ok {
		t.Fatal("Submit acknowledged a rejected job")
	}
	if !strings.Contains(msg, "invalid partition") {
		t.Errorf("message = %q, want the stderr diagnostic", msg)
	}
}

func TestSubmit_WrongAckToken(t *testing.T) {
	bin := writeScript(t, `echo "Queued batch job 7"`)
	s := newSbatch(t, Options{Bin: bin, Ack: "Submitted"})

	if ok, _ := s.Submit(context.Background(), t.TempDir()); ok {
		t.Fatal("Submit acknowledged output whose first token is not the ack")
	}
}

func TestSubmit_BinaryMissing(t *testing.T) {
	s := newSbatch(t, Options{
		Bin: filepath.Join(t.TempDir(), "no-such-binary"),
		Ack: "Submitted",
	})

	ok, msg := s.Submit(context.Background(), t.TempDir())
	if ok {
		t.Fatal("Submit acknowledged without a scheduler binary")
	}
	if msg == "" {
		t.Error("failure without any diagnostic message")
	}
}

func TestSubmit_PassesFlagsAndCommand(t *testing.T) {
	bin := writeScript(t, `echo "Submitted $*"`)
	s := newSbatch(t, Options{
		Bin:        bin,
		Flags:      `-p small -o "out file"`,
		JobCommand: "vasp.slm",
		Ack:        "Submitted",
	})

	ok, msg := s.Submit(context.Background(), t.TempDir())
	if !ok {
		t.Fatalf("Submit not acknowledged, message: %q", msg)
	}
	if want := "Submitted -p small -o out file vasp.slm"; msg != want {
		t.Errorf("argv = %q, want %q", msg, want)
	}
}

func TestNewSbatch_MalformedQuoting(t *testing.T) {
	_, err := NewSbatch(Options{Bin: "sbatch", Flags: `-o "unclosed`}, logging.Discard())
	if err == nil {
		t.Fatal("NewSbatch accepted flags with unbalanced quotes")
	}
}
