package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Local preferences",
	}

	theme := &cobra.Command{
		Use:   "theme <dark|light>",
		Short: "Set the preferred theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "dark":
				return env.Auth.SetDarkTheme(cmd.Context(), true)
			case "light":
				return env.Auth.SetDarkTheme(cmd.Context(), false)
			default:
				return fmt.Errorf("theme must be dark or light")
			}
		},
	}

	cmd.AddCommand(theme)
	return cmd
}
