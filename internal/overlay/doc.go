// Package overlay implements a transparent always-on-top window that follows
// the top-level window of a named process.
//
// The Tracker re-resolves the target on every tick: a lookup failure or a
// stale handle only sends it back to searching, so the overlay disappears
// and reappears with its target rather than failing.
package overlay
