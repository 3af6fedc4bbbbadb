package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cliv/internal/output"
	"github.com/jmylchreest/cliv/internal/platform"
	"github.com/jmylchreest/cliv/internal/x11"
)

var windowsOpts struct {
	format   string
	template string
	field    string
	process  string
}

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List visible windows",
	Long: `List visible top-level windows with their owning process, in the order
the window manager reports them (oldest first). The process names are the
ones 'cliv overlay' accepts; it follows the first match.

Examples:
  # List all windows
  cliv windows

  # Pick a process with fuzzel and overlay it
  cliv overlay "$(cliv windows --format dmenu | fuzzel --dmenu | cut -d'|' -f2 | xargs)"

  # Window IDs of every firefox window
  cliv windows --process firefox --format ids

  # Custom template
  cliv windows --template '{{hex .Window.ID}} {{.Window.Process}}'`,
	Args: cobra.NoArgs,
	RunE: runWindows,
}

func init() {
	rootCmd.AddCommand(windowsCmd)

	formats := make([]string, 0, len(output.FormatTypes()))
	for _, f := range output.FormatTypes() {
		formats = append(formats, string(f))
	}

	windowsCmd.Flags().StringVarP(&windowsOpts.format, "format", "f", string(output.FormatPlain),
		"Output format ("+strings.Join(formats, ", ")+")")
	windowsCmd.Flags().StringVar(&windowsOpts.template, "template", "",
		"Go template for plain/dmenu output (fields: .Index, .Window)")
	windowsCmd.Flags().StringVar(&windowsOpts.field, "field", "",
		"Print one field per window (id, process, pid, geometry, title)")
	windowsCmd.Flags().StringVar(&windowsOpts.process, "process", "",
		"Only list windows of this process")
}

func runWindows(cmd *cobra.Command, args []string) error {
	format := output.FormatType(windowsOpts.format)
	if !slices.Contains(output.FormatTypes(), format) {
		return fmt.Errorf("unknown format %q", windowsOpts.format)
	}

	conn, err := x11.NewConnection(logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	windows, err := x11.NewWindowSource(conn).VisibleWindows()
	if err != nil {
		return err
	}
	if windowsOpts.process != "" {
		windows = slices.DeleteFunc(windows, func(w platform.Window) bool {
			return w.Process != windowsOpts.process
		})
	}

	if windowsOpts.field != "" {
		for _, w := range windows {
			fmt.Println(output.FormatField(&w, windowsOpts.field))
		}
		return nil
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = windowsOpts.template
	return output.NewFormatter(format, opts).Format(os.Stdout, windows)
}
