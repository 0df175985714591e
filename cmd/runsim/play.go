package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"speedrun-tracker/internal/platform/logger"
	"speedrun-tracker/internal/speedrun"
	"speedrun-tracker/internal/tracker"
)

type playOptions struct {
	stepTime   time.Duration
	frame      time.Duration
	pauseEvery int
	logLevel   string
}

func newPlayCmd() *cobra.Command {
	opts := playOptions{}
	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a simulated run, completing every step in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := tracker.ReadDefinition(args[0])
			if err != nil {
				return err
			}
			return play(cmd.OutOrStdout(), def, opts)
		},
	}
	cmd.Flags().DurationVar(&opts.stepTime, "step-time", time.Second, "simulated time spent on each step")
	cmd.Flags().DurationVar(&opts.frame, "frame", time.Second/60, "simulated tick length")
	cmd.Flags().IntVar(&opts.pauseEvery, "pause-every", 0, "pause after every N steps (0 disables)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "level of core diagnostics written to stderr")
	return cmd
}

func play(out io.Writer, def *speedrun.RunDefinition, opts playOptions) error {
	if opts.frame <= 0 {
		return fmt.Errorf("frame must be positive, got %s", opts.frame)
	}

	log := logger.NewWithWriter(os.Stderr, opts.logLevel, "text")
	run := speedrun.NewRun(def,
		speedrun.WithLogger(log),
		speedrun.WithListener(printEvent(out)))

	fmt.Fprintln(out, titleStyle.Render(run.Name()))
	if err := run.Start(); err != nil {
		return err
	}

	completed := 0
	for _, seg := range run.Segments() {
		for _, st := range seg.Steps() {
			if run.IsEnded() {
				break
			}
			advance(run, opts.stepTime, opts.frame)
			if err := st.Complete(); err != nil {
				fmt.Fprintln(out, warnStyle.Render("  ! "+err.Error()))
				continue
			}
			completed++
			if opts.pauseEvery > 0 && completed%opts.pauseEvery == 0 && !run.IsEnded() {
				if err := run.Pause(); err != nil {
					return err
				}
				if err := run.Resume(); err != nil {
					return err
				}
			}
		}
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, tracker.BuildSplits(tracker.NewRunSnapshot("simulation", run)))
	return nil
}

// advance feeds d to the run in frame-sized ticks.
func advance(run *speedrun.Run, d, frame time.Duration) {
	for d > 0 {
		step := min(frame, d)
		if err := run.Update(step); err != nil {
			return
		}
		d -= step
	}
}

func printEvent(out io.Writer) speedrun.Listener {
	return func(ev speedrun.Event) {
		var subject string
		switch {
		case ev.Step != nil:
			subject = ev.Step.Name()
		case ev.Segment != nil:
			subject = ev.Segment.Name()
		default:
			subject = ev.Run.Name()
		}
		label := ev.Kind.String()
		if ev.Kind == speedrun.EventRunPauseChanged {
			label = "resumed"
			if ev.Paused {
				label = "paused"
			}
		}
		fmt.Fprintf(out, "%s  %-18s %s\n", timeStyle.Render(ev.Elapsed.String()), label, subject)
	}
}
