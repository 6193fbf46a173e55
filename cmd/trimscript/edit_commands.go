package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trimscript/internal/editor"
	"trimscript/internal/rewrite"
	"trimscript/internal/services"
	"trimscript/internal/transcript"
)

type editResult struct {
	Changed      int     `json:"changed"`
	KeptCount    int     `json:"kept_count"`
	Duration     float64 `json:"duration"`
	HistoryDepth int     `json:"history_depth"`
	Dropped      []int   `json:"dropped,omitempty"`
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var positions bool

	cmd := &cobra.Command{
		Use:   "delete <index...>",
		Short: "Delete tokens by original index",
		Long:  "Deletes tokens by original index, or by kept position with --positions. Ranges like 4-9 are accepted.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, true, func(c context.Context, ed *editor.Editor) error {
				session := ed.Session()
				limit := session.Transcript().Len()
				if positions {
					limit = len(session.KeptIndices())
				}
				values, err := parseIndexArgs(args, limit)
				if err != nil {
					return err
				}
				var removed int
				if positions {
					removed, err = ed.DeletePositions(c, values...)
				} else {
					removed, err = ed.Delete(c, values...)
				}
				if err != nil {
					return err
				}
				return printEdit(cmd, ctx, ed, editResult{Changed: removed}, fmt.Sprintf("Deleted %d token(s)", removed))
			})
		},
	}

	cmd.Flags().BoolVar(&positions, "positions", false, "Address tokens by position in the kept list")
	return cmd
}

func newUndoCommand(ctx *commandContext) *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Undo the most recent edits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, true, func(c context.Context, ed *editor.Editor) error {
				undone, err := ed.Undo(c, steps)
				if err != nil {
					return err
				}
				msg := fmt.Sprintf("Undid %d edit(s)", undone)
				if undone == 0 {
					msg = "Nothing to undo"
				}
				return printEdit(cmd, ctx, ed, editResult{Changed: undone}, msg)
			})
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of edits to undo")
	return cmd
}

func newOptimizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Ask the language model to remove filler words",
		Long: "Sends the kept words to the configured model, which may only drop words.\n" +
			"The reply is aligned against the transcript; nothing changes if it does not align.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if ctx.overrides == nil {
				if err := cfg.RequireLLMKey(); err != nil {
					return services.Wrap(services.ErrConfiguration, "optimize", "config", "", err)
				}
			}
			return ctx.withEditor(cmd, true, func(c context.Context, ed *editor.Editor) error {
				result, err := ed.Optimize(c)
				if err != nil {
					return err
				}
				return printEdit(cmd, ctx, ed, editResult{Changed: len(result.Dropped), Dropped: result.Dropped},
					fmt.Sprintf("Optimize removed %d token(s)", len(result.Dropped)))
			})
		},
	}
}

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var wordsPath string
	var textPath string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply an edited word list or text to the kept transcript",
		Long: "Aligns an edited version of the kept transcript and keeps only what it still contains.\n" +
			"--words takes a JSON array of strings or of {\"word\": ...} objects; --text takes plain text.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (wordsPath == "") == (textPath == "") {
				return services.Wrap(services.ErrValidation, "apply", "flags", "exactly one of --words or --text is required", nil)
			}
			return ctx.withEditor(cmd, true, func(c context.Context, ed *editor.Editor) error {
				var result transcript.AlignResult
				if wordsPath != "" {
					words, err := readWordsFile(wordsPath)
					if err != nil {
						return err
					}
					result, err = ed.ApplyCandidates(c, words)
					if err != nil {
						return err
					}
				} else {
					data, err := os.ReadFile(textPath)
					if err != nil {
						return fmt.Errorf("read text: %w", err)
					}
					result, err = ed.ApplyText(c, string(data))
					if err != nil {
						return err
					}
				}
				return printEdit(cmd, ctx, ed, editResult{Changed: len(result.Dropped), Dropped: result.Dropped},
					fmt.Sprintf("Applied edit, removed %d token(s)", len(result.Dropped)))
			})
		},
	}

	cmd.Flags().StringVar(&wordsPath, "words", "", "JSON word list file")
	cmd.Flags().StringVar(&textPath, "text", "", "Plain text file")
	return cmd
}

func printEdit(cmd *cobra.Command, ctx *commandContext, ed *editor.Editor, result editResult, message string) error {
	session := ed.Session()
	result.KeptCount = len(session.KeptIndices())
	result.Duration = session.Duration()
	result.HistoryDepth = session.HistoryDepth()
	if ctx.jsonFlag {
		return writeJSON(cmd, result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s; %d kept, %s\n", message, result.KeptCount, formatClock(result.Duration))
	return nil
}

// readWordsFile loads a word list as plain strings or as the rewrite reply
// shape.
func readWordsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		return plain, nil
	}
	words, err := rewrite.ParseResponse(string(data))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "apply", "words", path, err)
	}
	return words, nil
}

// parseIndexArgs accepts integers and inclusive ranges such as 4-9. Range
// ends are clipped to limit, the number of addressable tokens, so a wide range
// never expands past the transcript.
func parseIndexArgs(args []string, limit int) ([]int, error) {
	var out []int
	parsed := false
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			lo, hi, isRange := strings.Cut(field, "-")
			if !isRange {
				v, err := strconv.Atoi(field)
				if err != nil {
					return nil, invalidIndex(field)
				}
				out = append(out, v)
				parsed = true
				continue
			}
			start, err1 := strconv.Atoi(lo)
			end, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil || end < start {
				return nil, invalidIndex(field)
			}
			parsed = true
			end = min(end, limit-1)
			for v := start; v <= end; v++ {
				out = append(out, v)
			}
		}
	}
	if !parsed {
		return nil, invalidIndex(strings.Join(args, " "))
	}
	return out, nil
}

func invalidIndex(value string) error {
	return services.Wrap(services.ErrValidation, "delete", "args", fmt.Sprintf("invalid index %q", value), nil)
}
