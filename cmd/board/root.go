package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/board"
	"github.com/BuzzLyutic/taskboard/internal/config"
	"github.com/BuzzLyutic/taskboard/internal/gateway"
	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/query"
	"github.com/BuzzLyutic/taskboard/internal/worker"
)

type app struct {
	cfg    config.Config
	logger *zap.Logger
	// gw is built from --gateway when nil
	gw gateway.Gateway

	project    string
	gatewayURL string
	jsonOut    bool
	criteria   query.Criteria
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "board",
		Short:         "Kanban board for a tracker project",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.gw == nil {
				a.gw = gateway.NewClient(a.gatewayURL, &http.Client{Timeout: a.cfg.RequestTimeout})
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&a.project, "project", "p", "KAN", "project key")
	root.PersistentFlags().StringVar(&a.gatewayURL, "gateway", a.cfg.GatewayURL, "tracker API base URL")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON instead of tables")

	root.AddCommand(
		newBoardCmd(a),
		newListCmd(a),
		newSummaryCmd(a),
		newCreateCmd(a),
		newAdvanceCmd(a),
		newMoveCmd(a),
		newDeleteCmd(a),
		newProjectsCmd(a),
	)
	return root
}

func addFilterFlags(cmd *cobra.Command, a *app) {
	cmd.Flags().StringVar(&a.criteria.Search, "search", "", "case-insensitive title search")
	cmd.Flags().StringVar(&a.criteria.Assignee, "assignee", "", "exact assignee")
	cmd.Flags().StringVar((*string)(&a.criteria.Type), "type", "", "task type (Task, Bug, Story, Epic)")
}

// openStore hydrates a store for the selected project. close waits for
// pending gateway calls and stops the workers.
func (a *app) openStore(ctx context.Context) (*board.Store, func(), error) {
	jobs := worker.NewPool(a.logger, a.cfg.WorkerCount, a.cfg.QueueSize, a.cfg.RequestTimeout)
	jobs.Start(ctx)

	store := board.NewStore(strings.ToUpper(a.project), a.gw, jobs, a.logger, board.Options{
		Columns:        a.cfg.Columns,
		Reporter:       a.cfg.Reporter,
		RollbackStatus: a.cfg.RollbackStatus,
		Timeout:        a.cfg.RequestTimeout,
	})
	closeFn := func() {
		store.Settle()
		jobs.Stop()
	}

	if err := store.Hydrate(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}

// settle waits for the background calls and reports what the gateway
// rejected.
func settle(store *board.Store) error {
	store.Settle()
	return errors.Join(store.Failures()...)
}

// resolve accepts either an id or an issue key like KAN-3.
func resolve(store *board.Store, ref string) (string, error) {
	if t, ok := store.Task(ref); ok {
		return t.ID, nil
	}
	for _, t := range store.Tasks() {
		if strings.EqualFold(t.Key, ref) {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", board.ErrNotFound, ref)
}

func (a *app) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printTask(w io.Writer, t model.Task) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.Key, t.Title, t.Status, t.Type, t.Priority, t.Assignee)
}
