package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/me/trialq/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the trialq CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trialq",
		Short: "trialq - batch job submission for simulation trial directories",
		Long: `trialq enters the given trial directories (already prepared with their
input files) and queues a batch of jobs to the scheduler.

Two sentinel files form each trial's persistent state:
 * 'submitted' marks a calculation that is started but incomplete.
   It is created when a job is submitted and deleted when 'finished' appears.
 * 'finished' marks a trial that is 100% complete. It is created when
   trialq runs again after the job has finished.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(flagLogLevel, flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Site config file (default trialq.yaml if present)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newSubmitCmd(),
		newHistoryCmd(),
		newServeCmd(),
	)

	return root
}

// defaultDBPath returns the run-history database path, creating its parent
// directory when needed.
func defaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".trialq")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "trialq.db"), nil
}
