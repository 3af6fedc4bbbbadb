package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/cliv/internal/platform"
)

// IDsFormatter outputs just the window IDs in hex, one per line.
// Useful for piping to xdotool or xprop.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes window IDs to the writer, one per line.
func (f *IDsFormatter) Format(w io.Writer, windows []platform.Window) error {
	for _, win := range windows {
		if _, err := fmt.Fprintf(w, "0x%08x\n", uint32(win.ID)); err != nil {
			return err
		}
	}
	return nil
}
