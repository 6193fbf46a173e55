package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"trimscript/internal/editor"
	"trimscript/internal/render"
	"trimscript/internal/services"
	"trimscript/internal/subtitles"
	"trimscript/internal/transcript"
)

type rangesView struct {
	Ranges transcript.Ranges `json:"ranges"`
	Total  float64           `json:"total"`
}

func newRangesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ranges",
		Short: "List the source time ranges the kept transcript plays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, true, func(_ context.Context, ed *editor.Editor) error {
				ranges, err := ed.Ranges()
				if err != nil {
					return err
				}
				view := rangesView{Ranges: ranges, Total: ranges.Total()}
				if view.Ranges == nil {
					view.Ranges = transcript.Ranges{}
				}
				if ctx.jsonFlag {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				if len(ranges) == 0 {
					fmt.Fprintln(out, "Nothing kept")
					return nil
				}
				rows := make([][]string, 0, len(ranges))
				for i, r := range ranges {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						formatClock(r.Start),
						formatClock(r.End),
						formatClock(r.Duration()),
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"#", "Start", "End", "Length"},
					plainRows(rows),
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
					shouldColorize(out),
				))
				fmt.Fprintf(out, "%d range(s), %s total\n", len(ranges), formatClock(view.Total))
				return nil
			})
		},
	}
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "render <output>",
		Short: "Render the kept ranges of the source media to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			return ctx.withEditor(cmd, true, func(c context.Context, ed *editor.Editor) error {
				result, err := ed.Render(c, output)
				if err != nil {
					return err
				}
				return printRender(cmd, ctx, result, "Rendered")
			})
		},
	}
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Render a fast low-resolution preview into the project work directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, true, func(c context.Context, ed *editor.Editor) error {
				result, err := ed.Preview(c)
				if err != nil {
					return err
				}
				return printRender(cmd, ctx, result, "Preview written")
			})
		},
	}
}

func printRender(cmd *cobra.Command, ctx *commandContext, result render.Result, verb string) error {
	if ctx.jsonFlag {
		return writeJSON(cmd, result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d range(s), %s) in %s\n",
		verb, result.OutputPath, len(result.Ranges), formatClock(result.Duration), result.Elapsed.Round(time.Millisecond))
	return nil
}

func newFrameCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "frame <seconds> <output>",
		Short: "Extract a still frame from the source media",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return services.Wrap(services.ErrValidation, "frame", "args", fmt.Sprintf("invalid time %q", args[0]), nil)
			}
			dest, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			return ctx.withEditor(cmd, true, func(c context.Context, ed *editor.Editor) error {
				if err := ed.Frame(c, at, dest); err != nil {
					return err
				}
				if ctx.jsonFlag {
					return writeJSON(cmd, map[string]any{"output": dest, "at": at})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Frame at %s written to %s\n", formatClock(at), dest)
				return nil
			})
		},
	}
}

func newSubtitlesCommand(ctx *commandContext) *cobra.Command {
	var maxChars int
	var maxDuration float64

	cmd := &cobra.Command{
		Use:   "subtitles <output.srt>",
		Short: "Write SRT subtitles timed to the rendered output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			return ctx.withEditor(cmd, true, func(c context.Context, ed *editor.Editor) error {
				count, err := ed.Subtitles(c, dest, subtitles.Options{MaxChars: maxChars, MaxDuration: maxDuration})
				if err != nil {
					return err
				}
				if ctx.jsonFlag {
					return writeJSON(cmd, map[string]any{"output": dest, "cues": count})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cue(s) to %s\n", count, dest)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&maxChars, "max-chars", subtitles.DefaultMaxChars, "Maximum characters per cue")
	cmd.Flags().Float64Var(&maxDuration, "max-duration", subtitles.DefaultMaxDuration, "Maximum cue length in seconds")
	return cmd
}
