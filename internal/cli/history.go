package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newHistoryCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the local search history",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show recent searches, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Search.LoadHistory(cmd.Context()); err != nil {
				return err
			}
			entries := env.Search.History()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no search history")
				return nil
			}
			for i, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, e)
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <query>",
		Short: "Remove one entry from the history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Search.LoadHistory(cmd.Context()); err != nil {
				return err
			}
			return env.Search.RemoveFromHistory(cmd.Context(), strings.Join(args, " "))
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Delete the entire search history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Search.LoadHistory(cmd.Context()); err != nil {
				return err
			}
			return env.Search.ClearHistory(cmd.Context())
		},
	}

	cmd.AddCommand(list, remove, clear)
	return cmd
}
