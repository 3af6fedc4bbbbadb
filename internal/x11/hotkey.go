package x11

import (
	"fmt"
	"slices"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

var ignoreModsOnce sync.Once

// BindHotkey grabs key (an xgbutil key sequence such as "Insert" or
// "Mod4-m") on the root window and calls fn on every press. fn runs on the
// event loop goroutine.
func (c *Connection) BindHotkey(key string, fn func()) error {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(c.XUtil)
	})

	err := keybind.KeyPressFun(func(_ *xgbutil.XUtil, _ xevent.KeyPressEvent) {
		fn()
	}).Connect(c.XUtil, c.Root, key, true)
	if err != nil {
		return fmt.Errorf("failed to bind hotkey %q: %w", key, err)
	}
	c.logger.Debug("hotkey bound", "key", key)
	return nil
}

// configureIgnoreMods makes key grabs fire regardless of CapsLock, NumLock
// and ScrollLock.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	locks := []uint16{uint16(xproto.ModMaskLock)}
	for _, keysym := range []string{"Num_Lock", "Scroll_Lock"} {
		if mask := modMaskForKeysym(xu, keysym); mask != 0 && !slices.Contains(locks, mask) {
			locks = append(locks, mask)
		}
	}

	ignore := make([]uint16, 0, 1<<len(locks))
	for subset := range 1 << len(locks) {
		var mask uint16
		for bit, lock := range locks {
			if subset&(1<<bit) != 0 {
				mask |= lock
			}
		}
		ignore = append(ignore, mask)
	}
	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
