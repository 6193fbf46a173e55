package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trimscript/internal/preflight"
	"trimscript/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories, and the language model endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			failed := preflight.Failed(results)

			if ctx.jsonFlag {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				lines := renderSectionHeader("Dependencies", colorize)
				lines = append(lines, checkLines(results, colorize)...)
				fmt.Fprintln(out, strings.Join(lines, "\n"))
			}

			if failed {
				return services.Wrap(services.ErrConfiguration, "doctor", "preflight", "required checks failed", nil)
			}
			return nil
		},
	}
}
