package toast

// Surface is the on-screen window backing a single toast.
type Surface interface {
	Move(x, y int) error
	SetAlpha(alpha float64) error
	// SetProgress updates the countdown bar; 0 is full, 1 is empty.
	SetProgress(progress float64) error
	// Exists reports whether the window is still alive. A surface destroyed
	// externally reports false and the stack drops its toast.
	Exists() bool
	Destroy() error
}

// SurfaceSpec describes a toast surface to create.
type SurfaceSpec struct {
	ID      ID
	Title   string
	Message string
	Kind    Kind
	X       int
	Y       int
	Width   int
	Height  int
	Alpha   float64
	// OnDismiss is called when the user clicks the toast. It may be called
	// from any goroutine.
	OnDismiss func()
}

// SurfaceFactory creates toast surfaces.
type SurfaceFactory interface {
	NewToastSurface(spec SurfaceSpec) (Surface, error)
}
