package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/me/trialq/internal/config"
	"github.com/me/trialq/internal/engine"
	"github.com/me/trialq/internal/marker"
	"github.com/me/trialq/internal/report"
	"github.com/me/trialq/internal/store"
	"github.com/me/trialq/internal/submit"
	"github.com/me/trialq/internal/trial"
	"github.com/me/trialq/pkg/model"
	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var (
		resume    bool
		skip      bool
		check     bool
		dbPath    string
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "submit DIR...",
		Short: "Classify trial directories and queue jobs to the scheduler",
		Long: fmt.Sprintf(`Classify each DIR by lifecycle state and submit jobs for the ones that
are ready. Without a mode flag trialq runs in safe mode: it refuses to
submit anything while an unfinished-but-submitted trial is present.

environment variables:
 %-16s scheduler options
                  default: %s
 %-16s command for the job, plus options
                  default: %s`,
			config.EnvSchedulerFlags, config.Default().SchedulerFlags,
			config.EnvJobCommand, config.Default().JobCommand),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}

			mode := model.ModeSafe
			switch {
			case skip:
				mode = model.ModeSkip
			case resume:
				mode = model.ModeResume
			case check:
				mode = model.ModeCheck
			}

			classifier, err := trial.NewClassifier(trial.Params{
				InputArtifact:    cfg.InputArtifact,
				OutputArtifact:   cfg.OutputArtifact,
				CompletionNeedle: cfg.CompletionNeedle,
				CompletionExpr:   cfg.CompletionExpr,
			}, logger)
			if err != nil {
				return err
			}

			submitter, err := submit.NewSbatch(submit.Options{
				Bin:        cfg.SchedulerBin,
				Flags:      cfg.SchedulerFlags,
				JobCommand: cfg.JobCommand,
				Ack:        cfg.SubmitAck,
			}, logger)
			if err != nil {
				return err
			}

			markers := marker.NewStore(cfg.FinishedMarker, cfg.SubmittedMarker)
			eng := engine.New(classifier, markers, submitter, logger)

			run, runErr := eng.Run(cmd.Context(), args, mode)
			if run != nil && !noHistory {
				run.ID = "run_" + uuid.New().String()
				recordRun(cmd.Context(), dbPath, run)
			}
			if runErr != nil {
				return runErr
			}

			report.Summary(cmd.OutOrStdout(), run.Stats, mode)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&resume, "resume", "r", false,
		"Resume incomplete trials via new jobs (DANGEROUS: no trial may still be running)")
	cmd.Flags().BoolVarP(&skip, "skip", "s", false, "Skip incomplete trials")
	cmd.Flags().BoolVarP(&check, "check", "c", false, "Only add 'finished' markers; do not submit anything")
	cmd.Flags().StringVar(&dbPath, "db", "", "Run-history database path (default ~/.trialq/trialq.db)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history database")
	cmd.MarkFlagsMutuallyExclusive("resume", "skip", "check")

	return cmd
}

// recordRun persists the run record. Best-effort: history must never make a
// submission run fail, so every error here is only logged.
func recordRun(ctx context.Context, dbPath string, run *model.Run) {
	var err error
	if dbPath == "" {
		dbPath, err = defaultDBPath()
		if err != nil {
			logger.Warn("cannot resolve history database path", "error", err)
			return
		}
	}

	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		logger.Warn("cannot open history database", "path", dbPath, "error", err)
		return
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		logger.Warn("cannot migrate history database", "path", dbPath, "error", err)
		return
	}
	if err := st.CreateRun(ctx, run); err != nil {
		logger.Warn("cannot record run", "run_id", run.ID, "error", err)
		return
	}
	logger.Debug("run recorded", "run_id", run.ID, "db", dbPath)
}
