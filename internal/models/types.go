package models

import (
	"fmt"
	"strings"
)

// ========================= Board Geometry =========================

// BoardSize is the width and height of every board.
const BoardSize = 10

// Coord addresses a board cell. Row grows downwards, Col grows to the right.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string { return fmt.Sprintf("(%d, %d)", c.Row, c.Col) }

// InBounds reports whether c lies on a BoardSize x BoardSize grid.
func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

// Direction is the orientation of a ship run: "H" extends along the row
// (increasing Col), "V" extends down the column (increasing Row).
type Direction string

const (
	Horizontal Direction = "H"
	Vertical   Direction = "V"
)

// ParseDirection accepts h/H/horizontal and v/V/vertical.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "H", "HORIZONTAL":
		return Horizontal, nil
	case "V", "VERTICAL":
		return Vertical, nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

func (d Direction) Valid() bool { return d == Horizontal || d == Vertical }

// Step returns the row/column delta between consecutive segments.
func (d Direction) Step() (dr, dc int) {
	if d == Vertical {
		return 1, 0
	}
	return 0, 1
}

// ========================= Wire Envelope =========================

// WsMsg is the frame pushed to stream subscribers.
type WsMsg struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}
