package trial

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/me/trialq/internal/logging"
)

func testClassifier(t *testing.T, p Params) *Classifier {
	t.Helper()
	if p.InputArtifact == "" {
		p.InputArtifact = "INCAR"
	}
	if p.OutputArtifact == "" {
		p.OutputArtifact = "OUTCAR"
	}
	if p.CompletionNeedle == "" {
		p.CompletionNeedle = "Voluntary"
	}
	c, err := NewClassifier(p, logging.Discard())
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}
	return c
}

func writeTrial(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}
	return dir
}

func TestLooksLikeTrial(t *testing.T) {
	c := testClassifier(t, Params{})

	t.Run("with input artifact", func(t *testing.T) {
		dir := writeTrial(t, map[string]string{"INCAR": "SYSTEM = test\n"})
		ok, err := c.LooksLikeTrial(dir)
		if err != nil {
			t.Fatalf("LooksLikeTrial: %v", err)
		}
		if !ok {
			t.Error("LooksLikeTrial = false, want true")
		}
	})

	t.Run("missing artifact is false not error", func(t *testing.T) {
		dir := t.TempDir()
		ok, err := c.LooksLikeTrial(dir)
		if err != nil {
			t.Fatalf("LooksLikeTrial: %v", err)
		}
		if ok {
			t.Error("LooksLikeTrial = true on empty directory")
		}
	})

	t.Run("missing directory is ProbeNotFound", func(t *testing.T) {
		_, err := c.LooksLikeTrial(filepath.Join(t.TempDir(), "nope"))
		pe := AsProbeError(err)
		if pe == nil {
			t.Fatalf("err = %v, want *ProbeError", err)
		}
		if pe.Kind != ProbeNotFound {
			t.Errorf("Kind = %q, want %q", pe.Kind, ProbeNotFound)
		}
	})

	t.Run("regular file is ProbeNotADirectory", func(t *testing.T) {
		root := t.TempDir()
		file := filepath.Join(root, "plain")
		if err := os.WriteFile(file, nil, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		_, err := c.LooksLikeTrial(file)
		pe := AsProbeError(err)
		if pe == nil {
			t.Fatalf("err = %v, want *ProbeError", err)
		}
		if pe.Kind != ProbeNotADirectory {
			t.Errorf("Kind = %q, want %q", pe.Kind, ProbeNotADirectory)
		}
	})
}

func TestLooksFinished(t *testing.T) {
	c := testClassifier(t, Params{})

	tests := []struct {
		name   string
		outcar string // empty string means no OUTCAR at all
		want   bool
	}{
		{"no output artifact", "", false},
		{"needle absent", "running step 1\nrunning step 2\n", false},
		{"needle once", "step 1\n Voluntary context switches: 42\n", true},
		// Two occurrences warn about reliability but still count as finished.
		{"needle twice", "Voluntary a\nmid\nVoluntary b\n", true},
		{"needle mid-line", "x Voluntary y\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := map[string]string{"INCAR": ""}
			if tt.outcar != "" {
				files["OUTCAR"] = tt.outcar
			}
			dir := writeTrial(t, files)

			got, err := c.LooksFinished(dir)
			if err != nil {
				t.Fatalf("LooksFinished: %v", err)
			}
			if got != tt.want {
				t.Errorf("LooksFinished = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLooksFinished_CompletionExpr(t *testing.T) {
	// Expression demanding at least three lines overrides count>0.
	c := testClassifier(t, Params{CompletionExpr: "count > 0 && lines >= 3"})

	short := writeTrial(t, map[string]string{"OUTCAR": "Voluntary\n"})
	got, err := c.LooksFinished(short)
	if err != nil {
		t.Fatalf("LooksFinished: %v", err)
	}
	if got {
		t.Error("LooksFinished = true, expression requires 3 lines")
	}

	long := writeTrial(t, map[string]string{"OUTCAR": "a\nb\nVoluntary\n"})
	got, err = c.LooksFinished(long)
	if err != nil {
		t.Fatalf("LooksFinished: %v", err)
	}
	if !got {
		t.Error("LooksFinished = false, expression should hold")
	}
}

func TestNewClassifier_BadExpr(t *testing.T) {
	_, err := NewClassifier(Params{
		InputArtifact:    "INCAR",
		OutputArtifact:   "OUTCAR",
		CompletionNeedle: "Voluntary",
		CompletionExpr:   "count >",
	}, logging.Discard())
	if err == nil {
		t.Fatal("NewClassifier accepted a broken expression")
	}
}
