package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"regcheck/src/render"
	"regcheck/src/store"
	"regcheck/src/tui"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "history <project>",
		Short: "List recorded builds of a project with their summaries and verdicts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			st, err := a.openDurableStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := store.ListEntries(cmd.Context(), st, args[0], limit)
			if err != nil {
				return err
			}
			return render.WriteHistory(cmd.OutOrStdout(), f, args[0], entries)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of builds to show, newest first (0 for all)")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text or json")
	return cmd
}

func newProjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects with recorded builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openDurableStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			projects, err := st.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range projects {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func newViewCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "view <project>",
		Short: "Browse a project's builds and verdicts in an interactive TUI",
		Long: `Opens a two-panel terminal browser: recorded builds on the left, the
selected build's summaries, findings and report lines on the right.

Keys: j/k navigate, Enter focus details, Esc back, Tab cycle filter,
/ search, r reload, q quit.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{quietAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openDurableStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			return tui.Start(cmd.Context(), st, args[0], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 200, "number of builds to load (0 for all)")
	return cmd
}
