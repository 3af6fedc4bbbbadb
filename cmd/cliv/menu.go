package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cliv/internal/audio"
	"github.com/jmylchreest/cliv/internal/clock"
	"github.com/jmylchreest/cliv/internal/config"
	"github.com/jmylchreest/cliv/internal/daemon"
	"github.com/jmylchreest/cliv/internal/dbus"
	"github.com/jmylchreest/cliv/internal/particle"
	"github.com/jmylchreest/cliv/internal/platform"
	"github.com/jmylchreest/cliv/internal/shell"
	"github.com/jmylchreest/cliv/internal/theme"
	"github.com/jmylchreest/cliv/internal/toast"
	"github.com/jmylchreest/cliv/internal/x11"
)

// startupNoticeDelay lets the menu window settle before the first toast.
const startupNoticeDelay = 500 * time.Millisecond

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the menu",
	Long: `Start the menu window with its particle field and toast stack.

The menu owns org.freedesktop.Notifications when no other notification
daemon does; otherwise it mirrors the running daemon's notifications.
It also exports a control interface used by 'cliv toggle' and 'cliv music'.

Drag the menu with the left mouse button and close it with a right click.`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

var menuOpts struct {
	noDBus   bool
	noAudio  bool
	particle int
}

func init() {
	rootCmd.AddCommand(menuCmd)

	menuCmd.Flags().BoolVar(&menuOpts.noDBus, "no-dbus", false,
		"Do not receive notifications over D-Bus")
	menuCmd.Flags().BoolVar(&menuOpts.noAudio, "no-audio", false,
		"Disable notification sounds")
	menuCmd.Flags().IntVar(&menuOpts.particle, "particles", -1,
		"Override the particle count")
}

func runMenu(cmd *cobra.Command, args []string) error {
	if menuOpts.noDBus {
		cfg.DBus.Enabled = false
	}
	if menuOpts.noAudio {
		cfg.Audio.Enabled = false
	}
	if menuOpts.particle >= 0 {
		cfg.Particles.Count = menuOpts.particle
	}

	logger.Info("starting cliv menu", "version", version)

	conn, err := x11.NewConnection(logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	loader := theme.NewLoader(logger)
	palette, err := loader.Resolve(cfg.Theme)
	if err != nil {
		logger.Warn("failed to load theme, using defaults", "theme", cfg.Theme.Name, "error", err)
		palette = theme.DefaultPalette()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The loop outlives ctx so shutdown work can still be posted to it
	loopCtx, stopLoop := context.WithCancel(context.Background())
	loop := clock.NewLoop(logger)
	go func() {
		_ = loop.Run(loopCtx)
	}()
	defer func() {
		stopLoop()
		<-loop.Done()
	}()

	menu, err := x11.NewMenuWindow(conn, cfg.Menu.Title, cfg.Menu.Hotkey,
		cfg.Menu.Width, cfg.Menu.Height, cfg.Menu.Opacity, palette, logger)
	if err != nil {
		return err
	}

	field, err := particle.NewField(particleOptions(cfg), x11.NewSpriteRenderer(conn, menu), loop, logger)
	if err != nil {
		_ = menu.Destroy()
		return fmt.Errorf("failed to create particle field: %w", err)
	}

	factory := x11.NewToastFactory(conn, palette, logger)
	stack, err := toast.NewStack(cfg.Toasts, conn.Screen(), factory, loop, logger)
	if err != nil {
		field.Stop()
		_ = menu.Destroy()
		return fmt.Errorf("failed to create toast stack: %w", err)
	}

	audioManager := audio.NewManager(cfg, logger)
	if err := audioManager.Start(ctx); err != nil {
		logger.Warn("failed to start audio manager", "error", err)
	}
	stack.SetSounder(audioManager)

	sh := shell.New(menu, field, stack, logger)
	menu.BindDrag(conn, sh)
	if err := menu.BindClose(conn, func() { postOrRun(loop, func() { _ = sh.Close() }) }); err != nil {
		logger.Warn("failed to bind close button", "error", err)
	}

	shellCtx := sh.Context(palette)
	notifier := daemon.NewInternalNotifier(logger)
	notifier.SetNotifyFunc(shellCtx.Notify)

	music := newMusic(cfg.Audio, shellCtx.Notify)

	control := dbus.NewControlService(&menuController{loop: loop, shell: sh, music: music}, logger)
	if err := control.Start(); err != nil {
		if errors.Is(err, dbus.ErrMenuRunning) {
			_ = sh.Close()
			audioManager.Stop()
			return err
		}
		logger.Warn("failed to export menu controller", "error", err)
	}

	stopNotifications := func() {}
	if cfg.DBus.Enabled {
		stopNotifications, err = startNotifications(cfg.DBus.Mode, stack, notifier, cfg.Toasts.DefaultDuration.Duration())
		if err != nil {
			logger.Warn("failed to start D-Bus notifications", "error", err)
			stopNotifications = func() {}
		}
	}

	if err := conn.BindHotkey(cfg.Menu.Hotkey, func() {
		postOrRun(loop, func() { sh.Toggle() })
	}); err != nil {
		logger.Warn("failed to bind hotkey", "hotkey", cfg.Menu.Hotkey, "error", err)
	}

	applyPalette := func(p theme.Palette) {
		factory.SetPalette(p)
		menu.SetPalette(p)
	}

	configWatcher := daemon.NewConfigWatcher(configPath(), logger)
	configWatcher.SetReloadCallback(func(newCfg *config.Config) {
		audioManager.UpdateConfig(newCfg)
		if p, err := loader.Resolve(newCfg.Theme); err != nil {
			notifier.NotifyThemeError(err)
		} else {
			applyPalette(p)
		}
		notifier.NotifyConfigReloaded()
	})
	configWatcher.SetErrorCallback(notifier.NotifyConfigError)
	if err := configWatcher.Start(ctx, cfg); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	loader.StartHotReload(ctx, func(p theme.Palette) {
		applyPalette(p)
		notifier.NotifyThemeReloaded(p.Name)
	})

	field.Start()
	if cfg.Audio.Autoplay {
		if err := music.Play(); err != nil {
			logger.Warn("failed to autoplay music", "error", err)
		}
	}
	if cfg.Menu.StartupNotice {
		loop.AfterFunc(startupNoticeDelay, func() {
			notifier.NotifyStartup(cfg.Menu.Hotkey)
		})
	}

	// Runs inside Close, before the stack and field are stopped
	sh.OnClose(func() {
		cancel()
		music.Stop()
		stopNotifications()
		if err := control.Stop(); err != nil {
			logger.Warn("error stopping control service", "error", err)
		}
		configWatcher.Stop()
		loader.StopHotReload()
		audioManager.Stop()
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			postOrRun(loop, func() { _ = sh.Close() })
		case <-sh.Done():
		}
	}()

	go func() {
		<-sh.Done()
		// Closing the connection wakes the event loop so it sees Quit
		conn.Quit()
		conn.Close()
	}()

	logger.Info("cliv menu ready", "hotkey", cfg.Menu.Hotkey)
	conn.EventLoop()

	// The event loop also ends when the X server goes away
	postOrRun(loop, func() { _ = sh.Close() })
	<-sh.Done()
	logger.Info("cliv menu stopped")
	return nil
}

// postOrRun runs fn on the loop, or directly once the loop has stopped.
func postOrRun(loop *clock.Loop, fn func()) {
	if err := loop.Post(fn); err != nil {
		fn()
	}
}

func particleOptions(c *config.Config) particle.Options {
	return particle.Options{
		Count:    c.Particles.Count,
		Bounds:   platform.Rect{Width: c.Menu.Width, Height: c.Menu.Height},
		SpeedMin: c.Particles.SpeedMin,
		SpeedMax: c.Particles.SpeedMax,
		Color:    c.Particles.Color,
		Size:     c.Particles.Size,
		Interval: c.Particles.Interval.Duration(),
	}
}

// newMusic creates the music player from the audio settings.
func newMusic(c config.AudioConfig, notify toast.NotifyFunc) *audio.Music {
	music := audio.NewMusic(notify, logger)
	if c.Music != "" {
		if err := music.SetFile(c.Music); err != nil {
			logger.Warn("failed to select music file", "path", c.Music, "error", err)
		}
	}
	music.SetLoop(c.Loop)
	return music
}

// startNotifications connects the toast stack to D-Bus. In server mode a
// taken bus name falls back to mirroring the owner's traffic.
func startNotifications(mode string, stack *toast.Stack, notifier *daemon.InternalNotifier, defaultDuration time.Duration) (func(), error) {
	if mode == config.DBusModeServer {
		server := dbus.NewNotificationServer(logger)
		info := dbus.DefaultServerInfo()
		info.Version = version
		server.SetServerInfo(info)
		bridge := daemon.NewBridge(stack, server, defaultDuration, logger)
		bridge.Attach(server)
		stack.OnClose(bridge.HandleClosed)

		err := server.Start()
		if err == nil {
			return func() {
				if err := server.Stop(); err != nil {
					logger.Warn("error stopping D-Bus server", "error", err)
				}
			}, nil
		}
		if !errors.Is(err, dbus.ErrNameTaken) {
			return nil, err
		}

		owner := runningDaemonName()
		logger.Info("notification bus name taken, mirroring instead", "owner", owner)
		notifier.NotifyDBusFallback(owner)
	}

	bridge := daemon.NewBridge(stack, nil, defaultDuration, logger)
	monitor := dbus.NewMonitor(logger)
	monitor.SetNotifyHandler(bridge.HandleMirror)
	if err := monitor.Start(); err != nil {
		return nil, err
	}
	return func() {
		if err := monitor.Stop(); err != nil {
			logger.Warn("error stopping D-Bus monitor", "error", err)
		}
	}, nil
}

// runningDaemonName asks the notification daemon that owns the bus name who
// it is.
func runningDaemonName() string {
	client, err := dbus.NewClient()
	if err != nil {
		return "unknown"
	}
	defer func() { _ = client.Close() }()

	info, err := client.ServerInformation()
	if err != nil || info.Name == "" {
		return "unknown"
	}
	return info.Name
}

// menuController exposes the menu over D-Bus. Calls arrive on godbus
// goroutines; visibility changes are handed to the loop.
type menuController struct {
	loop  *clock.Loop
	shell *shell.Shell
	music *audio.Music
}

func (c *menuController) Toggle() {
	postOrRun(c.loop, func() { c.shell.Toggle() })
}

func (c *menuController) MusicPlay() error {
	return c.music.Play()
}

func (c *menuController) MusicPause() {
	c.music.Pause()
}

func (c *menuController) MusicStop() {
	c.music.Stop()
}

func (c *menuController) MusicToggleLoop() bool {
	return c.music.ToggleLoop()
}

func (c *menuController) MusicSetVolume(volume float64) {
	c.music.SetVolume(volume)
}

func (c *menuController) MusicStatus() string {
	return c.music.Status().String()
}
