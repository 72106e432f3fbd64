package model

import "strconv"

// Action is one byte-valued step of a KO path. Values 1..4 mean "KO N
// spawns", 255 means "clear current wave", 11..13 mean "resolve N ghost
// spawns"; 0 is unused.
type Action uint8

const (
	ActionClearWave Action = 255
	ghostBase       Action = 10
)

// IsGhost reports whether the action resolves ghost spawns, and if so how
// many.
func (a Action) IsGhost() (count uint8, ok bool) {
	if a > ghostBase && a < ActionClearWave {
		return uint8(a) - uint8(ghostBase), true
	}
	return 0, false
}

// String renders an action the way the reference tool's path labels do:
// a plain KO count, "Clear Wave", or "Ghost N".
func (a Action) String() string {
	switch {
	case a == ActionClearWave:
		return "Clear Wave"
	case a > ghostBase && a < ActionClearWave:
		return "Ghost " + strconv.Itoa(int(a)-int(ghostBase))
	default:
		return strconv.Itoa(int(a))
	}
}

// Path is the ordered sequence of player actions identifying one branch of
// the forward-generator's tree. Paths are copied by value at each branch
// point so that sibling branches never alias the same backing array.
type Path []Action

// Clone returns an independent copy of the path.
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Append returns a new path with action appended, leaving p untouched.
func (p Path) Append(a Action) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = a
	return out
}

// String joins the actions with "->" the way result tables in the
// reference tool render a path.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	s := p[0].String()
	for _, a := range p[1:] {
		s += "->" + a.String()
	}
	return s
}
