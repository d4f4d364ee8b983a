package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "collabctl",
		Short:         "Validate collab entities, erase accounts and manage the offline message queue",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}

	cobra.OnFinalize(func() {
		if err := a.close(); err != nil {
			fmt.Fprintln(os.Stderr, "shutdown:", err)
		}
	})

	rootCmd.PersistentFlags().StringVarP(&a.confPath, "conf", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&a.storeDriver, "store", "", "document store driver: memory or mongodb")
	rootCmd.PersistentFlags().StringVar(&a.queueDriver, "queue", "", "offline queue driver: memory, sqlite or redis")

	rootCmd.AddCommand(
		newValidateCommand(a),
		newEraseCommand(a),
		newQueueCommand(a),
		newChatCommand(a),
		newVersionCommand(),
	)

	return rootCmd
}
