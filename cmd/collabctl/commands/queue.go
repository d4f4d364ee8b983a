package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/studyhub/collab/delivery"
	"github.com/studyhub/collab/queue"
)

func newQueueCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "queue",
		Aliases: []string{"q"},
		Short:   "Inspect and replay the offline message queue",
	}

	var chat string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List queued messages in enqueue order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			q, err := a.offlineQueue(ctx)
			if err != nil {
				return err
			}
			var entries []queue.Entry
			if chat != "" {
				entries, err = q.PendingForChat(ctx, chat)
			} else {
				entries, err = q.Pending(ctx)
			}
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []queue.Entry{}
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		},
	}
	listCmd.Flags().StringVar(&chat, "chat", "", "only list messages of this chat")

	cmd.AddCommand(
		listCmd,
		&cobra.Command{
			Use:   "replay",
			Short: "Resend every queued message with backoff",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := a.replayer(cmd)
				if err != nil {
					return err
				}
				res, err := r.Replay(cmd.Context())
				if werr := writeJSON(cmd.OutOrStdout(), res); werr != nil {
					return werr
				}
				return err
			},
		},
		&cobra.Command{
			Use:   "retry <id>",
			Short: "Resend one queued message now",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				r, err := a.replayer(cmd)
				if err != nil {
					return err
				}
				msg, err := r.Retry(cmd.Context(), args[0])
				if msg.ID != "" {
					if werr := writeJSON(cmd.OutOrStdout(), msg); werr != nil {
						return werr
					}
				}
				return err
			},
		},
	)

	return cmd
}

func (a *app) replayer(cmd *cobra.Command) (*delivery.Replayer, error) {
	ctx := cmd.Context()
	store, err := a.documentStore(ctx)
	if err != nil {
		return nil, err
	}
	q, err := a.offlineQueue(ctx)
	if err != nil {
		return nil, err
	}
	r := delivery.NewReplayer(delivery.NewStoreTransport(store), q,
		delivery.WithConfig(a.cfg.Delivery),
		delivery.WithCollector(a.collector),
	)
	a.onClose(func(ctx context.Context) error {
		r.Close(ctx)
		return nil
	})
	return r, nil
}
