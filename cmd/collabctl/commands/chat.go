package commands

import (
	"github.com/spf13/cobra"

	"github.com/studyhub/collab/delivery"
)

func newChatCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Write read receipts and typing status",
	}

	var stopped bool
	typingCmd := &cobra.Command{
		Use:   "typing <chatId> <userId>",
		Short: "Mark a user as typing in a chat",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := a.sideChannel(cmd)
			if err != nil {
				return err
			}
			sc.SetTyping(cmd.Context(), args[0], args[1], !stopped)
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"chatId": args[0],
				"userId": args[1],
				"typing": !stopped,
			})
		},
	}
	typingCmd.Flags().BoolVar(&stopped, "stop", false, "mark the user as no longer typing")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "read <chatId> <messageId> <userId>",
			Short: "Record that a user read a message",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				sc, err := a.sideChannel(cmd)
				if err != nil {
					return err
				}
				sc.MarkRead(cmd.Context(), args[0], args[1], args[2])
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"chatId":    args[0],
					"messageId": args[1],
					"userId":    args[2],
				})
			},
		},
		typingCmd,
	)

	return cmd
}

func (a *app) sideChannel(cmd *cobra.Command) (*delivery.SideChannel, error) {
	store, err := a.documentStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	sc := delivery.NewSideChannel(store, a.cfg.Delivery)
	sc.SetCollector(a.collector)
	return sc, nil
}
