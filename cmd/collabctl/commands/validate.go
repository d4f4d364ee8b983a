package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studyhub/collab/structs"
	"github.com/studyhub/collab/validation"
)

var errInvalid = errors.New("validation failed")

func newValidateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "validate",
		Aliases: []string{"v"},
		Short:   "Validate entities read from JSON files",
	}

	var creation bool
	taskCmd := &cobra.Command{
		Use:   "task <file>",
		Short: "Validate a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var t structs.Task
			if err := readJSON(args[0], &t); err != nil {
				return err
			}
			v := a.validator()
			if creation {
				return report(cmd, v.ValidateTaskCreation(t))
			}
			return report(cmd, v.ValidateTask(t))
		},
	}
	taskCmd.Flags().BoolVar(&creation, "creation", false, "apply the task creation rules")

	cmd.AddCommand(
		taskCmd,
		&cobra.Command{
			Use:   "task-update <file>",
			Short: "Validate a partial task update",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var updates map[string]any
				if err := readJSON(args[0], &updates); err != nil {
					return err
				}
				return report(cmd, a.validator().ValidateTaskUpdate(updates))
			},
		},
		&cobra.Command{
			Use:   "group <file>",
			Short: "Validate a group",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var g structs.Group
				if err := readJSON(args[0], &g); err != nil {
					return err
				}
				return report(cmd, a.validator().ValidateGroup(g))
			},
		},
		&cobra.Command{
			Use:   "message <file>",
			Short: "Validate a chat message",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var m structs.Message
				if err := readJSON(args[0], &m); err != nil {
					return err
				}
				return report(cmd, a.validator().ValidateMessage(m))
			},
		},
		&cobra.Command{
			Use:   "participants <file>",
			Short: "Validate a JSON array of group chat member ids",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var ids []string
				if err := readJSON(args[0], &ids); err != nil {
					return err
				}
				if err := validation.ValidateParticipants(ids); err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), err)
					return errInvalid
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			},
		},
	)

	return cmd
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func report(cmd *cobra.Command, res validation.Result) error {
	if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if !res.Valid {
		return errInvalid
	}
	return nil
}
