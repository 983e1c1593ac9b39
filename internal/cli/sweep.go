package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/glitch-app/glitch/internal/modules/service"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Run a quest sweep once, outside the scheduler",
	}

	var yes bool
	expire := &cobra.Command{
		Use:   "expire",
		Short: "Deactivate quests past their expiry and clear their chat and participants",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm("Expire due quests now? Their chat and participants are deleted.")
				if err != nil || !ok {
					return err
				}
			}
			sweeps, err := invoke[service.SweepService](container())
			if err != nil {
				return err
			}
			return runExpire(cmd.Context(), cmd.OutOrStdout(), sweeps)
		},
	}
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete inactive quests past the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm("Permanently delete stale inactive quests?")
				if err != nil || !ok {
					return err
				}
			}
			sweeps, err := invoke[service.SweepService](container())
			if err != nil {
				return err
			}
			return runPurge(cmd.Context(), cmd.OutOrStdout(), sweeps)
		},
	}
	sweep.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	sweep.AddCommand(expire, purge)
	return sweep
}

func runExpire(ctx context.Context, out io.Writer, sweeps service.SweepService) error {
	rep, err := sweeps.ExpireDue(ctx)
	if rep != nil {
		fmt.Fprintln(out, TitleStyle.Render(fmt.Sprintf("Expired %d quest(s)", len(rep.Expired))))
		for _, q := range rep.Expired {
			fmt.Fprintf(out, "  %s %s\n", MutedStyle.Render(q.ID.String()), q.Title)
		}
		if rep.Cleanup != nil {
			fmt.Fprintln(out, RenderInfo(fmt.Sprintf("removed %d message(s) and %d participant(s)",
				rep.Cleanup.Messages, rep.Cleanup.Participants)))
		}
	}
	if err != nil {
		fmt.Fprintln(out, RenderError(err.Error()))
		return err
	}
	fmt.Fprintln(out, RenderSuccess("expiry sweep done"))
	return nil
}

func runPurge(ctx context.Context, out io.Writer, sweeps service.SweepService) error {
	rep, err := sweeps.PurgeStale(ctx)
	if err != nil {
		fmt.Fprintln(out, RenderError(err.Error()))
		return err
	}
	fmt.Fprintln(out, RenderSuccess(fmt.Sprintf("purged %d quest(s) inactive before %s",
		rep.Purged, rep.Cutoff.UTC().Format(time.RFC3339))))
	return nil
}
