package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyhub/collab/deletion"
	"github.com/studyhub/collab/observes"
)

type eraseOutput struct {
	UserID         string         `json:"userId"`
	ProfileDeleted bool           `json:"profileDeleted"`
	Deleted        map[string]int `json:"deleted"`
	Total          int            `json:"total"`
	Failed         []string       `json:"failed,omitempty"`
	FollowUpID     string         `json:"followUpId,omitempty"`
	Hint           string         `json:"hint,omitempty"`
}

func newEraseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "erase <uid>",
		Short: "Erase an account and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.documentStore(ctx)
			if err != nil {
				return err
			}

			deleterOpts := []deletion.Option{deletion.WithCollector(a.collector)}
			if a.cfg.Deletion != nil && a.cfg.Deletion.BatchSize > 0 {
				deleterOpts = append(deleterOpts, deletion.WithBatchSize(a.cfg.Deletion.BatchSize))
			}
			opts := []deletion.EraserOption{
				deletion.WithReporter(observes.NewErasureReporter()),
				deletion.WithDeleterOptions(deleterOpts...),
			}
			if f := a.followUp(ctx); f != nil {
				opts = append(opts, deletion.WithFollowUp(f))
			}

			rep := deletion.NewAccountEraser(store, opts...).EraseAccount(ctx, args[0])
			out := eraseOutput{
				UserID:         rep.UserID,
				ProfileDeleted: rep.ProfileDeleted,
				Deleted:        rep.Breakdown(),
				Total:          rep.Total,
				Failed:         rep.Failed(),
				FollowUpID:     rep.FollowUpID,
				Hint:           rep.Hint(),
			}
			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if err := rep.Err(); err != nil {
				return fmt.Errorf("erasure incomplete: %w", err)
			}
			return nil
		},
	}
}
