// Package layout validates widget placements on a dashboard grid and maps
// grid rectangles onto terminal cells.
package layout

import (
	"errors"
	"fmt"
)

// ErrInvalidGrid is returned when a grid has a non-positive dimension.
var ErrInvalidGrid = errors.New("invalid grid")

// GridSpec is the number of rows and columns of a dashboard grid.
type GridSpec struct {
	Rows    int
	Columns int
}

// Placement is a widget's position on the grid, in grid units.
type Placement struct {
	Row        int
	Column     int
	RowSpan    int
	ColumnSpan int
}

// Rect is a validated placement. It covers the half-open interval
// [Row, Row+RowSpan) x [Column, Column+ColumnSpan).
type Rect Placement

// Intersects reports whether r and o share at least one grid cell.
func (r Rect) Intersects(o Rect) bool {
	return r.Row < o.Row+o.RowSpan && o.Row < r.Row+r.RowSpan &&
		r.Column < o.Column+o.ColumnSpan && o.Column < r.Column+r.ColumnSpan
}

// Kind classifies a layout failure.
type Kind int

const (
	OutOfBounds Kind = iota
	Overlap
)

func (k Kind) String() string {
	if k == Overlap {
		return "overlap"
	}
	return "out of bounds"
}

// Error names the widget (by configuration index) that failed placement.
// For Overlap, Other is the earlier widget it collides with.
type Error struct {
	Kind   Kind
	Widget int
	Other  int
	Detail string
}

func (e *Error) Error() string {
	if e.Kind == Overlap {
		return fmt.Sprintf("widget %d overlaps widget %d", e.Widget, e.Other)
	}
	return fmt.Sprintf("widget %d is out of bounds: %s", e.Widget, e.Detail)
}

// Validate checks that both grid dimensions are positive.
func (g GridSpec) Validate() error {
	if g.Rows <= 0 || g.Columns <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGrid, g.Rows, g.Columns)
	}
	return nil
}

// ValidateAndPlace returns one rectangle per placement, in order. Each
// widget is checked against the grid bounds before it is compared with the
// widgets ahead of it, and the first conflict in configuration order is
// returned as an *Error.
func ValidateAndPlace(grid GridSpec, placements []Placement) ([]Rect, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	rects := make([]Rect, 0, len(placements))
	for i, p := range placements {
		if detail := checkBounds(grid, p); detail != "" {
			return nil, &Error{Kind: OutOfBounds, Widget: i, Other: -1, Detail: detail}
		}
		r := Rect(p)
		for j, prev := range rects {
			if r.Intersects(prev) {
				return nil, &Error{Kind: Overlap, Widget: i, Other: j}
			}
		}
		rects = append(rects, r)
	}
	return rects, nil
}

func checkBounds(grid GridSpec, p Placement) string {
	switch {
	case p.Row < 0 || p.Column < 0:
		return fmt.Sprintf("negative position (%d,%d)", p.Row, p.Column)
	case p.RowSpan < 1 || p.ColumnSpan < 1:
		return fmt.Sprintf("span %dx%d must be at least 1x1", p.RowSpan, p.ColumnSpan)
	case p.Row >= grid.Rows || p.RowSpan > grid.Rows-p.Row:
		return fmt.Sprintf("row %d + row_span %d exceeds %d rows", p.Row, p.RowSpan, grid.Rows)
	case p.Column >= grid.Columns || p.ColumnSpan > grid.Columns-p.Column:
		return fmt.Sprintf("column %d + column_span %d exceeds %d columns", p.Column, p.ColumnSpan, grid.Columns)
	}
	return ""
}

// Box is a rectangle in terminal cells.
type Box struct {
	X, Y          int
	Width, Height int
}

// Box maps r onto a width x height cell area. Edges are computed from the
// grid line positions, so neighbouring rectangles share edges exactly and
// the remainder is spread across the grid instead of piling up at the end.
func (r Rect) Box(width, height int, grid GridSpec) Box {
	x0 := r.Column * width / grid.Columns
	x1 := (r.Column + r.ColumnSpan) * width / grid.Columns
	y0 := r.Row * height / grid.Rows
	y1 := (r.Row + r.RowSpan) * height / grid.Rows
	return Box{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
