package cli

import (
	"fmt"

	"github.com/me/trialq/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "Show recorded runs, or one run's per-trial outcomes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := dbPath
			if path == "" {
				var err error
				path, err = defaultDBPath()
				if err != nil {
					return fmt.Errorf("resolve history database path: %w", err)
				}
			}

			st, err := store.NewSQLiteStore(path, logger)
			if err != nil {
				return fmt.Errorf("open history database: %w", err)
			}
			defer st.Close()
			if err := st.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate history database: %w", err)
			}

			out := cmd.OutOrStdout()

			if len(args) == 1 {
				run, err := st.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %q not found", args[0])
				}

				fmt.Fprintf(out, "%s  mode=%s  started=%s\n",
					run.ID, run.Mode, run.StartedAt.Format("2006-01-02 15:04:05"))
				for _, k := range run.Stats.Keys() {
					fmt.Fprintf(out, "   %-18s %d\n", k, run.Stats[k])
				}
				if len(run.Trials) > 0 {
					fmt.Fprintln(out, "trials:")
					for _, tr := range run.Trials {
						fmt.Fprintf(out, "   %-20s %-18s %s\n", tr.Path, tr.Outcome, tr.Message)
					}
				}
				return nil
			}

			runs, total, err := st.ListRuns(cmd.Context(), limit, 0)
			if err != nil {
				return err
			}
			for _, run := range runs {
				fmt.Fprintf(out, "%s  %-6s  %s  valid=%d finished=%d submitted=%d\n",
					run.StartedAt.Format("2006-01-02 15:04:05"), run.Mode, run.ID,
					run.Stats["valid"], run.Stats["finished"], run.Stats["submitted"])
			}
			if total > len(runs) {
				fmt.Fprintf(out, "(%d of %d runs shown)\n", len(runs), total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Run-history database path (default ~/.trialq/trialq.db)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")

	return cmd
}
