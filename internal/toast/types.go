package toast

import (
	"errors"
	"time"
)

// ErrStackStopped is returned by Show after Stop.
var ErrStackStopped = errors.New("toast stack stopped")

// ID uniquely identifies a toast. IDs are ULIDs and sort by creation time.
type ID string

// Kind selects the toast's accent color and sound.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Kinds returns all toast kinds.
func Kinds() []Kind {
	return []Kind{KindInfo, KindSuccess, KindWarning, KindError}
}

// ParseKind returns the Kind named by s. Unknown names map to KindInfo.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindSuccess, KindWarning, KindError:
		return Kind(s)
	default:
		return KindInfo
	}
}

// State is a toast's lifecycle state.
type State int

const (
	StateEntering State = iota
	StateVisible
	StateExiting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateEntering:
		return "entering"
	case StateVisible:
		return "visible"
	case StateExiting:
		return "exiting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// CloseReason explains why a toast was closed.
type CloseReason int

const (
	// ReasonExpired means the countdown reached its end.
	ReasonExpired CloseReason = iota + 1
	// ReasonDismissed means the user clicked the toast.
	ReasonDismissed
	// ReasonRequested means Close or CloseAll was called.
	ReasonRequested
	// ReasonVanished means the toast's surface was destroyed externally.
	ReasonVanished
)

func (r CloseReason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonDismissed:
		return "dismissed"
	case ReasonRequested:
		return "requested"
	case ReasonVanished:
		return "vanished"
	default:
		return "unknown"
	}
}

// CloseFunc is called after a toast leaves the stack.
type CloseFunc func(id ID, reason CloseReason)

// Sounder plays the sound associated with a toast kind.
type Sounder interface {
	PlayForKind(kind string) error
}

// Info is a point-in-time copy of a toast's state.
type Info struct {
	ID        ID
	Index     int
	Title     string
	Message   string
	Kind      Kind
	State     State
	CreatedAt time.Time
	Duration  time.Duration
	X         float64
	Y         float64
	TargetX   float64
	TargetY   float64
	Alpha     float64
	Progress  float64
}

// NotifyFunc emits a toast. Collaborators receive it instead of the stack.
type NotifyFunc func(title, message string, kind Kind)
