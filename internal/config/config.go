// Package config builds the immutable run configuration for trialq.
// Precedence: built-in defaults, then the optional site file, then
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables understood by trialq.
const (
	EnvSchedulerFlags = "TRIALQ_SFLAGS" // sbatch options
	EnvJobCommand     = "TRIALQ_VASP"   // command for vasp, plus options
)

// DefaultFile is the site configuration file looked up in the working
// directory when no --config flag is given.
const DefaultFile = "trialq.yaml"

// Config describes one run of the submitter. It is built once at startup
// and never mutated afterwards.
type Config struct {
	// SchedulerBin is the scheduler submission binary.
	SchedulerBin string `yaml:"scheduler_bin"`

	// SchedulerFlags and JobCommand are shell-word-split before use; they
	// are kept as the raw strings the operator supplied.
	SchedulerFlags string `yaml:"scheduler_flags"`
	JobCommand     string `yaml:"job_command"`

	// SubmitAck is the first stdout token that marks a successful submission.
	SubmitAck string `yaml:"submit_ack"`

	// InputArtifact marks a directory as a valid trial (presence only).
	InputArtifact string `yaml:"input_artifact"`

	// OutputArtifact is scanned line-by-line for CompletionNeedle.
	OutputArtifact   string `yaml:"output_artifact"`
	CompletionNeedle string `yaml:"completion_needle"`

	// CompletionExpr, when set, is a JavaScript expression evaluated with
	// the needle count and line count in scope; its truthiness replaces the
	// default count>0 rule. Empty keeps the default behavior.
	CompletionExpr string `yaml:"completion_expr"`

	// Marker file names. Their mere existence encodes trial state.
	FinishedMarker  string `yaml:"finished_marker"`
	SubmittedMarker string `yaml:"submitted_marker"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SchedulerBin:     "sbatch",
		SchedulerFlags:   "-p small -n 64 -t 02:00:00 -o out-%j",
		JobCommand:       "vasp.slm",
		SubmitAck:        "Submitted",
		InputArtifact:    "INCAR",
		OutputArtifact:   "OUTCAR",
		CompletionNeedle: "Voluntary",
		FinishedMarker:   "finished",
		SubmittedMarker:  "submitted",
	}
}

// Load builds the effective configuration. path selects the site file; an
// empty path means "use trialq.yaml if present". A named file that does not
// exist is an error, a missing default file is not.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No site file, defaults stand.
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides file/default values from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSchedulerFlags); v != "" {
		c.SchedulerFlags = v
	}
	if v := os.Getenv(EnvJobCommand); v != "" {
		c.JobCommand = v
	}
}

func (c *Config) validate() error {
	switch {
	case c.SchedulerBin == "":
		return fmt.Errorf("config: scheduler_bin must not be empty")
	case c.JobCommand == "":
		return fmt.Errorf("config: job_command must not be empty")
	case c.InputArtifact == "":
		return fmt.Errorf("config: input_artifact must not be empty")
	case c.OutputArtifact == "":
		return fmt.Errorf("config: output_artifact must not be empty")
	case c.FinishedMarker == "" || c.SubmittedMarker == "":
		return fmt.Errorf("config: marker file names must not be empty")
	case c.FinishedMarker == c.SubmittedMarker:
		return fmt.Errorf("config: finished and submitted markers must differ")
	}
	return nil
}
