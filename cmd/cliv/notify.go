package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cliv/internal/dbus"
	"github.com/jmylchreest/cliv/internal/toast"
)

var notifyOpts struct {
	kind     string
	duration time.Duration
	appName  string
	printID  bool
}

var notifyCmd = &cobra.Command{
	Use:   "notify TITLE [MESSAGE]",
	Short: "Send a notification",
	Long: `Send a notification through org.freedesktop.Notifications.

A running cliv menu shows it as a toast coloured by its kind. Any other
notification daemon receives it as a regular notification; the kind travels
as the x-cliv-kind hint and error notifications are sent as critical.`,
	Example: `  cliv notify "Build finished" "All tests passed" --kind success
  cliv notify "Disk almost full" --kind warning --duration 10s`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)

	kinds := make([]string, 0, len(toast.Kinds()))
	for _, k := range toast.Kinds() {
		kinds = append(kinds, string(k))
	}

	notifyCmd.Flags().StringVarP(&notifyOpts.kind, "kind", "k", string(toast.KindInfo),
		"Notification kind ("+strings.Join(kinds, ", ")+")")
	notifyCmd.Flags().DurationVarP(&notifyOpts.duration, "duration", "d", 0,
		"How long the toast stays (default: toasts.default_duration of the receiving menu)")
	notifyCmd.Flags().StringVar(&notifyOpts.appName, "app", "cliv",
		"Application name sent with the notification")
	notifyCmd.Flags().BoolVar(&notifyOpts.printID, "print-id", false,
		"Print the notification ID")
}

func runNotify(cmd *cobra.Command, args []string) error {
	kind := toast.Kind(strings.ToLower(notifyOpts.kind))
	if !slices.Contains(toast.Kinds(), kind) {
		return fmt.Errorf("unknown kind %q", notifyOpts.kind)
	}
	if notifyOpts.duration < 0 {
		return fmt.Errorf("duration must not be negative, got %s", notifyOpts.duration)
	}

	title := args[0]
	message := ""
	if len(args) > 1 {
		message = args[1]
	}

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	id, err := client.Notify(notifyOpts.appName, title, message, kind, notifyOpts.duration)
	if err != nil {
		return err
	}
	logger.Debug("notification sent", "id", id, "kind", kind)

	if notifyOpts.printID {
		fmt.Println(id)
	}
	return nil
}
