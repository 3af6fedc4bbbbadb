package overlay

// DrawingID identifies a drawing on the overlay. IDs are never reused.
type DrawingID uint64

// Shape is the kind of primitive a Drawing paints.
type Shape int

const (
	ShapeRectangle Shape = iota
	ShapeLine
	ShapeCircle
	ShapeText
)

func (s Shape) String() string {
	switch s {
	case ShapeRectangle:
		return "rectangle"
	case ShapeLine:
		return "line"
	case ShapeCircle:
		return "circle"
	case ShapeText:
		return "text"
	default:
		return "unknown"
	}
}

// Default drawing colors.
const (
	DefaultShapeColor     = "red"
	DefaultTextColor      = "white"
	DefaultCrosshairColor = "lime"
	DefaultThickness      = 2
	DefaultCrosshairSize  = 20
)

// Drawing is one primitive painted on the overlay, in window coordinates.
// Rectangles span X1,Y1 to X2,Y2; circles are centred on X1,Y1.
type Drawing struct {
	ID        DrawingID
	Shape     Shape
	X1, Y1    int
	X2, Y2    int
	Radius    int
	Text      string
	Color     string
	Fill      string // Empty for outline only
	Thickness int
}

// Style overrides the default color, fill and thickness of a drawing.
type Style struct {
	Color     string
	Fill      string
	Thickness int
}

func (s Style) withDefaults(color string) Style {
	if s.Color == "" {
		s.Color = color
	}
	if s.Thickness <= 0 {
		s.Thickness = DefaultThickness
	}
	return s
}
