package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trimscript/internal/editor"
	"trimscript/internal/transcript"
)

type showToken struct {
	Position int     `json:"position"`
	Index    int     `json:"index"`
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Gap      bool    `json:"gap,omitempty"`
	Kept     bool    `json:"kept"`
}

type showView struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	SourcePath   string      `json:"source_path"`
	Duration     float64     `json:"duration"`
	KeptCount    int         `json:"kept_count"`
	TokenCount   int         `json:"token_count"`
	HistoryDepth int         `json:"history_depth"`
	Text         string      `json:"text"`
	Tokens       []showToken `json:"tokens"`

	shortID string
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the kept transcript",
		Long:  "Lists kept tokens with their position (for delete --positions) and original index (for delete).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEditor(cmd, true, func(_ context.Context, ed *editor.Editor) error {
				view := buildShowView(ed, all)
				if ctx.jsonFlag {
					return writeJSON(cmd, view)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintf(out, "%s  %s\n", view.shortID, view.Title)
				fmt.Fprintf(out, "Kept %d of %d tokens, %s, %d undo step(s)\n",
					view.KeptCount, view.TokenCount, formatClock(view.Duration), view.HistoryDepth)

				rows := make([]tableRow, 0, len(view.Tokens))
				for _, tok := range view.Tokens {
					pos := ""
					if tok.Kept {
						pos = strconv.Itoa(tok.Position)
					}
					rows = append(rows, tableRow{
						cells: []string{pos, strconv.Itoa(tok.Index), formatClock(tok.Start), formatClock(tok.End), displayText(tok)},
						dim:   !tok.Kept,
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"Pos", "Index", "Start", "End", "Text"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
					colorize,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include deleted tokens")
	return cmd
}

func buildShowView(ed *editor.Editor, all bool) showView {
	p, _ := ed.Project()
	session := ed.Session()
	snap := session.Snapshot()
	view := showView{
		ID:           p.ID,
		shortID:      p.ShortID(),
		Title:        p.Title,
		SourcePath:   p.SourcePath,
		Duration:     snap.Duration,
		KeptCount:    len(snap.Indices),
		TokenCount:   session.Transcript().Len(),
		HistoryDepth: session.HistoryDepth(),
		Text:         transcript.KeptText(snap.Tokens),
	}

	kept := make(map[int]int, len(snap.Indices))
	for pos, idx := range snap.Indices {
		kept[idx] = pos
	}
	source := snap.Tokens
	if all {
		source = session.Transcript().Tokens()
	}
	view.Tokens = make([]showToken, 0, len(source))
	for _, tok := range source {
		pos, isKept := kept[tok.Index]
		view.Tokens = append(view.Tokens, showToken{
			Position: pos,
			Index:    tok.Index,
			Text:     tok.Text,
			Start:    tok.Start,
			End:      tok.End,
			Gap:      tok.IsGap,
			Kept:     isKept,
		})
	}
	return view
}

func displayText(tok showToken) string {
	if tok.Gap {
		return transcript.GapLabel(tok.End - tok.Start)
	}
	return truncate(tok.Text, 60)
}
