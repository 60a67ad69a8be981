// Package submit queues trial jobs with the external scheduler.
package submit

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
)

// Submitter queues one trial's job. ok reports whether the scheduler
// acknowledged the submission; message carries the scheduler's diagnostic
// (the job id on success, the reason on failure).
type Submitter interface {
	Submit(ctx context.Context, dir string) (ok bool, message string)
}

// Sbatch submits jobs by running the scheduler binary inside the trial
// directory. Parsing is deliberately minimal: the first whitespace-delimited
// stdout token decides success, everything else is passed through as the
// diagnostic message.
type Sbatch struct {
	bin    string
	args   []string
	ack    string
	logger *slog.Logger
}

// Options configures an Sbatch submitter. Flags and JobCommand are raw
// operator-supplied strings, split on shell-word boundaries.
type Options struct {
	Bin        string
	Flags      string
	JobCommand string
	Ack        string
}

// NewSbatch creates an Sbatch submitter. Word splitting happens here once
// so malformed quoting fails at startup.
func NewSbatch(opts Options, logger *slog.Logger) (*Sbatch, error) {
	flagWords, err := shellwords.Parse(opts.Flags)
	if err != nil {
		return nil, fmt.Errorf("split scheduler flags %q: %w", opts.Flags, err)
	}
	cmdWords, err := shellwords.Parse(opts.JobCommand)
	if err != nil {
		return nil, fmt.Errorf("split job command %q: %w", opts.JobCommand, err)
	}

	return &Sbatch{
		bin:    opts.Bin,
		args:   append(flagWords, cmdWords...),
		ack:    opts.Ack,
		logger: logger.With("component", "submitter"),
	}, nil
}

// Submit runs the scheduler command with dir as working directory.
func (s *Sbatch) Submit(ctx context.Context, dir string) (bool, string) {
	cmd := exec.CommandContext(ctx, s.bin, s.args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()

	out := strings.TrimSpace(stdoutBuf.String())
	errOut := strings.TrimSpace(stderrBuf.String())

	s.logger.Debug("scheduler invoked",
		"dir", dir, "bin", s.bin, "args", s.args, "stdout", out, "stderr", errOut)

	words := strings.Fields(out)
	ok := len(words) > 0 && words[0] == s.ack

	// The diagnostic is the trimmed stdout; when the scheduler produced
	// none, fall back to stderr and then the exec error so a failure is
	// never silent.
	message := out
	if message == "" {
		message = errOut
	}
	if message == "" && runErr != nil {
		message = runErr.Error()
	}

	return ok, message
}
