package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/cliv/internal/platform"
)

// JSONFormatter formats windows as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes windows as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, windows []platform.Window) error {
	if windows == nil {
		windows = []platform.Window{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(windows)
}
