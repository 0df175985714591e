package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"speedrun-tracker/internal/tracker"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Parse definition files and report problems",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			problems := 0
			for _, path := range args {
				def, err := tracker.ReadDefinition(path)
				if err != nil {
					fmt.Fprintln(out, failStyle.Render("✗ "+err.Error()))
					problems++
					continue
				}
				sum := tracker.Summarize(def)
				fmt.Fprintf(out, "%s %s (%d segments, %d steps)\n",
					okStyle.Render("✓"), titleStyle.Render(sum.Name), sum.Segments, sum.Steps)
				for _, w := range tracker.Validate(def) {
					fmt.Fprintln(out, "  "+warnStyle.Render("! "+w))
				}
			}
			if problems > 0 {
				return fmt.Errorf("%d of %d files failed to load", problems, len(args))
			}
			return nil
		},
	}
}
