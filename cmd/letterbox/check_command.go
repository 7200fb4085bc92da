package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"letterbox/internal/deps"
	"letterbox/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify external tools and dataset directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			problems := 0

			fmt.Fprintln(out, sectionHeader("Dependencies", colorize))
			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				switch {
				case status.Available:
					fmt.Fprintln(out, statusLine(status.Name, statusOK, status.Path, colorize))
				case status.Optional:
					fmt.Fprintln(out, statusLine(status.Name, statusWarn, status.Detail+"; "+status.Description, colorize))
				default:
					problems++
					fmt.Fprintln(out, statusLine(status.Name, statusError, status.Detail+"; "+status.Description, colorize))
				}
			}

			fmt.Fprintln(out, sectionHeader("Filesystem", colorize))
			for _, res := range preflight.RunAll(cfg) {
				kind := statusOK
				switch {
				case !res.Passed:
					kind = statusError
					problems++
				case res.Warning:
					kind = statusWarn
				}
				fmt.Fprintln(out, statusLine(res.Name, kind, res.Detail, colorize))
			}

			if problems > 0 {
				return errors.New("check failed")
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}
