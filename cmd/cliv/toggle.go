package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/cliv/internal/dbus"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Show or hide the running menu",
	Long: `Show or hide the running menu, the same as pressing its hotkey.

Useful as a window manager key binding when the hotkey cannot be grabbed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *dbus.Client) error {
			return c.Toggle()
		})
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}
