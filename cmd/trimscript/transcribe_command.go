package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trimscript/internal/editor"
	"trimscript/internal/project"
	"trimscript/internal/services"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var opts editor.TranscribeOptions

	cmd := &cobra.Command{
		Use:   "transcribe <media>",
		Short: "Transcribe media and start a new edit session",
		Long: "Runs WhisperX on the media's audio track and seeds a fresh edit session.\n" +
			"Re-transcribing the open project's media replaces its transcript and clears its history.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, false, func(c context.Context, ed *editor.Editor) error {
				if !opts.NewProject {
					if err := openForTranscribe(c, ed, ctx.projectFlag); err != nil {
						return err
					}
				}
				loaded, err := ed.Transcribe(c, args[0], opts)
				if err != nil {
					return err
				}
				p, _ := ed.Project()
				if ctx.jsonFlag {
					return writeJSON(cmd, p)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Project %s: %s\n", p.ShortID(), p.Title)
				fmt.Fprintf(out, "  %d tokens, %s", loaded.Session.Transcript().Len(), formatClock(loaded.Session.Duration()))
				if p.Language != "" {
					fmt.Fprintf(out, ", language %s", p.Language)
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&opts.FromJSON, "from-json", "", "Load an existing WhisperX JSON file instead of running the recognizer")
	cmd.Flags().StringVar(&opts.Language, "language", "", "Language tag to record (overrides detection)")
	cmd.Flags().BoolVar(&opts.NewProject, "new", false, "Always create a new project")
	return cmd
}

// openForTranscribe opens the named project, or the latest one when it
// exists, so transcribing its media again replaces it in place.
func openForTranscribe(ctx context.Context, ed *editor.Editor, id string) error {
	if strings.TrimSpace(id) != "" {
		_, err := ed.Open(ctx, id)
		return err
	}
	if _, err := ed.OpenLatest(ctx); err != nil && !errors.Is(err, services.ErrNotFound) && !errors.Is(err, project.ErrLocked) {
		return err
	}
	return nil
}
