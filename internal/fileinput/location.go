package fileinput

import "fmt"

// Location names a line and column in a named source.
type Location struct {
	Name string
	Line int
	Col  int
}

func (loc Location) String() string {
	if loc.Name == "" {
		return fmt.Sprintf("%v:%v", loc.Line, loc.Col)
	}
	return fmt.Sprintf("%v:%v:%v", loc.Name, loc.Line, loc.Col)
}

// IsZero returns true if loc was never set, e.g. for synthesized ops.
func (loc Location) IsZero() bool { return loc.Line == 0 }
