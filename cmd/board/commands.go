package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BuzzLyutic/taskboard/internal/board"
	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/query"
	"github.com/BuzzLyutic/taskboard/internal/view"
)

func newBoardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show tasks grouped by column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			buckets := view.GroupByColumn(query.Filter(store.Tasks(), a.criteria), store.Columns())
			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), buckets)
			}

			out := cmd.OutOrStdout()
			for _, b := range buckets {
				fmt.Fprintf(out, "%s (%d)\n", b.Column, len(b.Tasks))
				for _, t := range b.Tasks {
					fmt.Fprintf(out, "  %s  %s  [%s] %s\n", t.Key, t.Title, t.Priority, t.Assignee)
				}
			}
			return nil
		},
	}
	addFilterFlags(cmd, a)
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var sortBy string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := view.ParseSortField(sortBy)
			if err != nil {
				return err
			}

			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			tasks, err := view.SortBy(query.Filter(store.Tasks(), a.criteria), field)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), tasks)
			}

			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "KEY\tTITLE\tSTATUS\tTYPE\tPRIORITY\tASSIGNEE")
			for _, t := range tasks {
				printTask(tw, t)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", string(view.SortKey), "sort field (key, title, status, created, assignee, type, priority, reporter)")
	addFilterFlags(cmd, a)
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show status, priority and workload breakdowns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			sum := view.Summarize(store.Tasks(), store.Columns())
			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), sum)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total: %d\n", sum.Total)
			fmt.Fprintf(out, "Done %.0f%%  Active %.0f%%  To do %.0f%%\n",
				sum.Overview.Done.Percent, sum.Overview.Active.Percent, sum.Overview.ToDo.Percent)

			tw := newTable(out)
			fmt.Fprintln(tw, "\nSTATUS\tCOUNT\tSHARE")
			for _, s := range sum.ByStatus {
				fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", s.Column, s.Count, s.Percent)
			}
			fmt.Fprintln(tw, "\nPRIORITY\tCOUNT\t")
			for _, p := range sum.ByPriority {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", p.Priority, p.Count, strings.Repeat("#", p.Count*10/sum.ByPriority.Max()))
			}
			fmt.Fprintln(tw, "\nASSIGNEE\tCOUNT\tSHARE")
			for _, w := range sum.Workload {
				fmt.Fprintf(tw, "%s\t%d\t%d%%\n", w.Assignee, w.Count, w.Percent)
			}
			return tw.Flush()
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	var in model.NewTask
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			var confirmed *model.Task
			cancel := store.Subscribe(func(e board.Event) {
				if e.Kind == board.EventConfirmed {
					t := e.Task
					confirmed = &t
				}
			})
			defer cancel()

			in.Title = args[0]
			if in.Status == "" {
				in.Status = store.Columns()[0]
			}
			if _, err := store.CreateTask(in); err != nil {
				return err
			}
			if err := settle(store); err != nil {
				return err
			}
			if confirmed == nil {
				return fmt.Errorf("create was not confirmed")
			}
			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), confirmed)
			}
			cmd.Printf("Created %s: %s\n", confirmed.Key, confirmed.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Status, "status", "", "initial column (defaults to the first column)")
	cmd.Flags().StringVar(&in.Assignee, "assignee", "", "assignee")
	cmd.Flags().StringVar((*string)(&in.Type), "type", string(model.TypeTask), "task type")
	cmd.Flags().StringVar((*string)(&in.Priority), "priority", string(model.PriorityNone), "priority")
	return cmd
}

func newAdvanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <key|id>",
		Short: "Move a task to the next column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			id, err := resolve(store, args[0])
			if err != nil {
				return err
			}
			status, err := store.AdvanceStatus(id)
			if err != nil {
				return err
			}
			if err := settle(store); err != nil {
				return err
			}
			cmd.Printf("%s -> %s\n", args[0], status)
			return nil
		},
	}
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <key|id> <status>",
		Short: "Move a task to a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			id, err := resolve(store, args[0])
			if err != nil {
				return err
			}
			if err := store.UpdateStatus(id, args[1]); err != nil {
				return err
			}
			if err := settle(store); err != nil {
				return err
			}
			cmd.Printf("%s -> %s\n", args[0], args[1])
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key|id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			id, err := resolve(store, args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteTask(id); err != nil {
				return err
			}
			if err := settle(store); err != nil {
				return err
			}
			cmd.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.gw.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), projects)
			}
			if len(projects) == 0 {
				cmd.Println("No projects found.")
				return nil
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "KEY\tNAME\tCATEGORY")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Key, p.Name, p.Category)
			}
			return tw.Flush()
		},
	}

	var in model.NewProject
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in = in.Normalize()
			if err := in.Validate(); err != nil {
				return err
			}
			p, err := a.gw.CreateProject(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(cmd.OutOrStdout(), p)
			}
			cmd.Printf("Created project %s (%s)\n", p.Key, p.Name)
			return nil
		},
	}
	create.Flags().StringVar(&in.Name, "name", "", "project name")
	create.Flags().StringVar(&in.Key, "key", "", "project key, 2-5 letters")
	create.Flags().StringVar(&in.Category, "category", "Software", "project category")
	create.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.AddCommand(create)
	return cmd
}
