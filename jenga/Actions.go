// Package jenga describes the block-removal game that the agent plays:
// its action space, its reward scheme, and the constants of the tower
// configuration.
package jenga

import "fmt"

const (
	// MaxLevel is the number of tower levels that a block may be
	// removed from. Levels are enumerated starting from 0 at the base.
	MaxLevel int = 9

	// BlocksPerLevel is the number of blocks in each level of the
	// tower. Each block in a level has a distinct colour, so
	// BlocksPerLevel is also the number of colours.
	BlocksPerLevel int = 3
)

// Color identifies a block within a level by its colour.
type Color int

// Available block colours
const (
	Yellow Color = iota
	Blue
	Green
)

// ColorOf returns the Color for an enumerated colour index. The index
// must be in [0, BlocksPerLevel).
func ColorOf(index int) Color {
	if index < 0 || index >= BlocksPerLevel {
		panic(fmt.Sprintf("colorof: no colour with index %v", index))
	}
	return Color(index)
}

// String implements the fmt.Stringer interface
func (c Color) String() string {
	switch c {
	case Yellow:
		return "y"
	case Blue:
		return "b"
	case Green:
		return "g"
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

// Action is a composite decision: which level of the tower to target
// and which coloured block within that level to remove. The two
// dimensions are independent choices of a single action.
type Action struct {
	Level int
	Color Color
}

// String implements the fmt.Stringer interface
func (a Action) String() string {
	return fmt.Sprintf("(%d, %v)", a.Level, a.Color)
}

// Valid returns whether the action identifies a block of the tower
// configuration.
func (a Action) Valid() bool {
	return a.Level >= 0 && a.Level < MaxLevel &&
		int(a.Color) >= 0 && int(a.Color) < BlocksPerLevel
}

// NumActions returns the total number of (level, colour) pairs in the
// full action space.
func NumActions() int {
	return MaxLevel * BlocksPerLevel
}

// PossibleActions returns all (level, colour) pairs that are not in
// taken. A nil taken set means that no actions have been taken yet.
// The returned slice is freshly allocated on each call and is in no
// particular order. When every block has been removed, the returned
// slice is empty.
func PossibleActions(taken map[Action]bool) []Action {
	actions := make([]Action, 0, NumActions())
	for level := 0; level < MaxLevel; level++ {
		for colour := 0; colour < BlocksPerLevel; colour++ {
			action := Action{Level: level, Color: ColorOf(colour)}
			if !taken[action] {
				actions = append(actions, action)
			}
		}
	}
	return actions
}
