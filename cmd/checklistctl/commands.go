// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/safecheck/checklist"
	"github.com/danielhkuo/safecheck/db"
	"github.com/danielhkuo/safecheck/models"
	"github.com/danielhkuo/safecheck/seed"
	"github.com/danielhkuo/safecheck/store"
)

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the database already applied the schema
			fmt.Fprintf(cmd.OutOrStdout(), "Schema ready (%s)\n", app.DatabaseType)
			return nil
		},
	}
}

func newSeedCmd(app *App) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "seed [FILE...]",
		Short: "Load checklists from YAML files or the built-in set",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !defaults && len(args) == 0 {
				return fmt.Errorf("nothing to seed: pass a file or --defaults")
			}

			var checklists []models.ChecklistInput
			if defaults {
				list, err := seed.Defaults()
				if err != nil {
					return err
				}
				checklists = append(checklists, list...)
			}
			for _, path := range args {
				list, err := seed.LoadFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				checklists = append(checklists, list...)
			}

			res, err := seed.Run(cmd.Context(), db.NewTxRunner(app.conn), checklists)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, label := range res.Created {
				fmt.Fprintf(out, "created  %s\n", label)
			}
			for _, label := range res.Skipped {
				fmt.Fprintf(out, "skipped  %s\n", label)
			}
			fmt.Fprintf(out, "%d created, %d skipped\n", len(res.Created), len(res.Skipped))
			return nil
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "Include the built-in operating room checklists")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checklists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := store.NewChecklistRepo(app.conn).List(cmd.Context())
			if err != nil {
				return err
			}

			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No checklists found.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLABEL\tVERSION\tSTEPS\tQUESTIONS\tCREATED")
			now := app.now()
			for _, cl := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\n",
					cl.ID,
					cl.Label,
					cl.Version,
					len(cl.Steps),
					cl.QuestionCount(),
					humanize.RelTime(cl.CreatedAt, now, "ago", "from now"),
				)
			}
			return tw.Flush()
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [ID...]",
		Short: "Write checklists as a seed file (all when no ID is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := store.NewChecklistRepo(app.conn)

			var checklists []*models.Checklist
			if len(args) == 0 {
				list, err := repo.List(cmd.Context())
				if err != nil {
					return err
				}
				for i := range list {
					checklists = append(checklists, &list[i])
				}
			}
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				cl, err := repo.Get(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("checklist %d: %w", id, err)
				}
				checklists = append(checklists, cl)
			}

			return seed.Export(cmd.OutOrStdout(), checklists...)
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history ID",
		Short: "Show every answer given to a checklist, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			checklists := store.NewChecklistRepo(app.conn)
			cl, err := checklists.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("checklist %d: %w", id, err)
			}
			subs, err := store.NewSubmissionRepo(app.conn).ListByChecklist(ctx, id)
			if err != nil {
				return err
			}
			current, err := checklists.CurrentAnswers(ctx, id)
			if err != nil {
				return err
			}

			h := checklist.BuildHistory(cl, subs, current)
			checklist.LabelAges(&h, app.now())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", h.Label, h.Version)
			fmt.Fprintf(out, "%d %s\n\n", h.SubmissionCount, h.CountLabel)
			if len(h.Rows) == 0 {
				fmt.Fprintln(out, "No answers yet.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "STEP\tQUESTION\tANSWER\tBY\tWHEN")
			for _, row := range h.Rows {
				when := row.SubmittedAgo
				if when == "" {
					when = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					row.StepName,
					row.QuestionText,
					row.Value,
					orDash(row.SubmittedBy),
					when,
				)
			}
			return tw.Flush()
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid checklist id %q", s)
	}
	return id, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
