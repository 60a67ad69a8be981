// Package trial decides what a candidate directory is: whether it holds a
// prepared trial at all, and whether that trial's output shows it finished.
package trial

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Params configures a Classifier.
type Params struct {
	// InputArtifact marks a directory as a prepared trial (presence only).
	InputArtifact string

	// OutputArtifact is scanned for CompletionNeedle, one line at a time.
	OutputArtifact   string
	CompletionNeedle string

	// CompletionExpr optionally replaces the count>0 rule; see CompileExpr.
	CompletionExpr string
}

// Classifier inspects trial directories. It never mutates anything.
type Classifier struct {
	params Params
	expr   *Expr
	logger *slog.Logger
}

// NewClassifier creates a Classifier. A non-empty CompletionExpr is compiled
// up front so a broken expression fails at startup, not mid-run.
func NewClassifier(p Params, logger *slog.Logger) (*Classifier, error) {
	c := &Classifier{
		params: p,
		logger: logger.With("component", "classifier"),
	}
	if p.CompletionExpr != "" {
		expr, err := CompileExpr(p.CompletionExpr)
		if err != nil {
			return nil, fmt.Errorf("completion_expr: %w", err)
		}
		c.expr = expr
	}
	return c, nil
}

// LooksLikeTrial reports whether dir contains the input artifact.
//
// A missing artifact in a readable directory is (false, nil). Anything that
// prevents the inspection itself (directory missing, unreadable, or not a
// directory) is a *ProbeError whose Kind the caller switches on.
func (c *Classifier) LooksLikeTrial(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return false, &ProbeError{Path: dir, Kind: kindOf(err), Err: err}
	}
	if !info.IsDir() {
		return false, &ProbeError{Path: dir, Kind: ProbeNotADirectory}
	}

	_, err = os.Stat(filepath.Join(dir, c.params.InputArtifact))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, &ProbeError{Path: dir, Kind: kindOf(err), Err: err}
	}
}

// LooksFinished reports whether the trial's output artifact shows evidence
// of completion. A missing artifact means not finished. The needle count is
// per line; more than one occurrence logs a reliability warning but does not
// change the result.
func (c *Classifier) LooksFinished(dir string) (bool, error) {
	haystack := filepath.Join(dir, c.params.OutputArtifact)

	f, err := os.Open(haystack)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", haystack, err)
	}
	defer f.Close()

	count, lines := 0, 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
		if strings.Contains(scanner.Text(), c.params.CompletionNeedle) {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read %s: %w", haystack, err)
	}

	if count > 1 {
		c.logger.Warn("completion needle found multiple times; search term may be unreliable",
			"needle", c.params.CompletionNeedle, "file", haystack, "count", count)
	}

	if c.expr != nil {
		ok, err := c.expr.Finished(count, lines)
		if err != nil {
			return false, fmt.Errorf("completion_expr on %s: %w", haystack, err)
		}
		return ok, nil
	}

	return count > 0, nil
}
