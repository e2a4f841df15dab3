package fracture

import (
	"fmt"
	"strings"
)

// ShapeKind identifies how a family's canonical polygon is built.
type ShapeKind int

const (
	// Rectangle is a four-sided polygon with half-widths r and r * aspect.
	Rectangle ShapeKind = iota
	// RegularPolygon is an N-gon inscribed in an ellipse with semi-axes r
	// and r * aspect.
	RegularPolygon
	// Ellipse is an ellipse with semi-axes r and r * aspect, approximated
	// by N points.
	Ellipse
	EndShapeKind
)

var shapeKindNames = [EndShapeKind]string{"Rectangle", "Polygon", "Ellipse"}

func (k ShapeKind) String() string {
	if k < 0 || k >= EndShapeKind {
		return "Unknown"
	}
	return shapeKindNames[k]
}

// ParseShapeKind converts a (case-insensitive) configuration string into a
// ShapeKind.
func ParseShapeKind(s string) (ShapeKind, error) {
	s = strings.TrimSpace(s)
	for k := ShapeKind(0); k < EndShapeKind; k++ {
		if strings.EqualFold(shapeKindNames[k], s) {
			return k, nil
		}
	}
	return EndShapeKind, fmt.Errorf(
		"Shape must be one of [%s], '%s' is not recognized.",
		strings.Join(shapeKindNames[:], " | "), s,
	)
}

// Shape is the shape descriptor shared by every fracture of a family.
type Shape struct {
	Kind ShapeKind
	// Sides is the number of vertices. It is ignored for rectangles.
	Sides  int
	Aspect float64
}

// Vertices returns the number of vertices a polygon of this shape has.
func (s Shape) Vertices() int {
	if s.Kind == Rectangle {
		return 4
	}
	return s.Sides
}

// Validate returns an error if the shape cannot be constructed.
func (s Shape) Validate() error {
	if s.Kind < 0 || s.Kind >= EndShapeKind {
		return fmt.Errorf("Unrecognized shape kind %d.", s.Kind)
	} else if s.Kind != Rectangle && s.Sides < 3 {
		return fmt.Errorf("%s needs at least 3 vertices, but has %d.", s.Kind, s.Sides)
	} else if s.Aspect <= 0 {
		return fmt.Errorf("Aspect ratio must be positive, but is %g.", s.Aspect)
	}
	return nil
}
