package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cliv/internal/dbus"
)

var musicCmd = &cobra.Command{
	Use:   "music",
	Short: "Control the running menu's music player",
	Long: `Control the music player of a running menu.

The track is music in the [audio] section of the config file. Playback
outcomes are shown as toasts by the menu.`,
}

var musicActionCmds = []*cobra.Command{
	{
		Use:   "play",
		Short: "Start the track, or resume it when paused",
		Args:  cobra.NoArgs,
		RunE:  musicAction("play"),
	},
	{
		Use:   "pause",
		Short: "Pause the track",
		Args:  cobra.NoArgs,
		RunE:  musicAction("pause"),
	},
	{
		Use:   "stop",
		Short: "Stop the track",
		Args:  cobra.NoArgs,
		RunE:  musicAction("stop"),
	},
}

var musicLoopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Toggle repeat",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *dbus.Client) error {
			loop, err := c.MusicToggleLoop()
			if err != nil {
				return err
			}
			if loop {
				fmt.Println("repeat on")
			} else {
				fmt.Println("repeat off")
			}
			return nil
		})
	},
}

var musicVolumeCmd = &cobra.Command{
	Use:   "volume LEVEL",
	Short: "Set the volume (0-100)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid volume %q: %w", args[0], err)
		}
		if level < 0 || level > 100 {
			return fmt.Errorf("volume must be between 0 and 100, got %d", level)
		}
		return withClient(func(c *dbus.Client) error {
			return c.MusicSetVolume(float64(level) / 100)
		})
	},
}

var musicStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the player state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *dbus.Client) error {
			status, err := c.MusicStatus()
			if err != nil {
				return err
			}
			fmt.Println(status)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(musicCmd)
	musicCmd.AddCommand(musicActionCmds...)
	musicCmd.AddCommand(musicLoopCmd, musicVolumeCmd, musicStatusCmd)
}

func musicAction(action string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withClient(func(c *dbus.Client) error {
			return c.Music(action)
		})
	}
}

// withClient runs fn with a session bus client.
func withClient(fn func(c *dbus.Client) error) error {
	client, err := dbus.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()
	return fn(client)
}
