package ui

// Direction is a screen direction used for arrow keys, focus and scrolling.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Vertical reports whether d moves along the y axis.
func (d Direction) Vertical() bool {
	return d == Up || d == Down
}
