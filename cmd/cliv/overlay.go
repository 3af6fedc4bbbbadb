package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cliv/internal/clock"
	"github.com/jmylchreest/cliv/internal/overlay"
	"github.com/jmylchreest/cliv/internal/tui"
	"github.com/jmylchreest/cliv/internal/x11"
)

var overlayCmd = &cobra.Command{
	Use:   "overlay [process]",
	Short: "Lay a translucent overlay over a program's window",
	Long: `Lay a translucent, click-through overlay over the first visible window
of a process and keep it aligned while the window moves or resizes.

The process defaults to overlay.process from the config file. Use --pick to
choose a window interactively. When the window closes, the overlay waits for
another window of the same process.`,
	Example: `  # Follow firefox
  cliv overlay firefox

  # Choose the window from a list, with a crosshair in its centre
  cliv overlay --pick --crosshair`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOverlay,
}

var overlayOpts struct {
	pick      bool
	alpha     float64
	color     string
	crosshair bool
	label     string
}

func init() {
	rootCmd.AddCommand(overlayCmd)

	overlayCmd.Flags().BoolVarP(&overlayOpts.pick, "pick", "p", false,
		"Choose the target window interactively")
	overlayCmd.Flags().Float64Var(&overlayOpts.alpha, "alpha", -1,
		"Overlay opacity 0.0-1.0 (default: overlay.alpha from config)")
	overlayCmd.Flags().StringVar(&overlayOpts.color, "color", "",
		"Overlay background color (default: overlay.background from config)")
	overlayCmd.Flags().BoolVar(&overlayOpts.crosshair, "crosshair", false,
		"Draw a crosshair in the centre of the window")
	overlayCmd.Flags().StringVar(&overlayOpts.label, "label", "",
		"Draw a text label in the top-left corner")
}

func runOverlay(cmd *cobra.Command, args []string) error {
	conn, err := x11.NewConnection(logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	source := x11.NewWindowSource(conn)

	process := cfg.Overlay.Process
	if len(args) > 0 {
		process = args[0]
	}
	if overlayOpts.pick || process == "" {
		w, err := tui.Run(tui.RunOptions{Lister: source.VisibleWindows})
		if err != nil {
			return err
		}
		process = w.Process
	}

	alpha := cfg.Overlay.Alpha
	if cmd.Flags().Changed("alpha") {
		alpha = overlayOpts.alpha
	}
	background := cfg.Overlay.Background
	if overlayOpts.color != "" {
		background = overlayOpts.color
	}

	surface, err := x11.NewOverlaySurface(conn, background, logger)
	if err != nil {
		return fmt.Errorf("failed to create overlay: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := clock.NewLoop(logger)
	go func() {
		_ = loop.Run(ctx)
	}()

	tracker, err := overlay.New(overlay.Options{
		ProcessName: process,
		Alpha:       alpha,
		Interval:    cfg.Overlay.Interval.Duration(),
	}, source, surface, loop, logger)
	if err != nil {
		_ = surface.Destroy()
		return err
	}

	found := tracker.Run()
	if !found {
		fmt.Fprintf(os.Stderr, "No visible window for %q yet, waiting...\n", process)
	}
	if overlayOpts.label != "" {
		tracker.DrawText(10, 20, overlayOpts.label, overlay.Style{})
	}
	if overlayOpts.crosshair {
		drawCenterCrosshair(tracker, source)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		tracker.Stop()
		conn.Quit()
		conn.Close()
	}()

	conn.EventLoop()

	// Stop is idempotent; this covers the X server going away
	tracker.Stop()
	return nil
}

// drawCenterCrosshair draws a crosshair in the middle of the tracked window.
func drawCenterCrosshair(t *overlay.Tracker, source *x11.WindowSource) {
	id, ok := t.Window()
	if !ok {
		logger.Warn("no window tracked, crosshair not drawn")
		return
	}
	r, err := source.WindowRect(id)
	if err != nil {
		logger.Warn("failed to read window geometry", "error", err)
		return
	}
	t.DrawCrosshair(r.Width/2, r.Height/2, 0, overlay.Style{})
}
