package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"trimscript/internal/project"
	"trimscript/internal/services"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects, most recently edited first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *project.Store) error {
				projects, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonFlag {
					if projects == nil {
						projects = []project.Project{}
					}
					return writeJSON(cmd, projects)
				}
				if len(projects) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No projects yet; run `trimscript transcribe <media>`")
					return nil
				}
				rows := make([][]string, 0, len(projects))
				for _, p := range projects {
					rows = append(rows, []string{
						p.ShortID(),
						truncate(p.Title, 40),
						formatClock(p.Duration),
						fmt.Sprintf("%d/%d", p.KeptCount, p.TokenCount),
						strconv.FormatUint(p.Version, 10),
						formatTimestamp(p.UpdatedAt),
					})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Length", "Kept", "Edits", "Updated"},
					plainRows(rows),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
					shouldColorize(cmd.OutOrStdout()),
				))
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a project and its scratch files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *project.Store) error {
				p, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				lock, err := store.Lock(p.ID)
				if err != nil {
					if errors.Is(err, project.ErrLocked) {
						return services.Wrap(services.ErrValidation, "remove", "lock", "project is open in another trimscript process", err)
					}
					return err
				}
				defer lock.Unlock()

				if err := store.Remove(cmd.Context(), p.ID); err != nil {
					return err
				}
				if err := os.RemoveAll(cfg.ProjectWorkDir(p.ID)); err != nil {
					return fmt.Errorf("remove work directory: %w", err)
				}
				if ctx.jsonFlag {
					return writeJSON(cmd, map[string]string{"removed": p.ID})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed project %s (%s)\n", p.ShortID(), p.Title)
				return nil
			})
		},
	}
}
