package tetris

type Shape string

const (
	I Shape = "I"
	O Shape = "O"
	T Shape = "T"
	S Shape = "S"
	Z Shape = "Z"
	J Shape = "J"
	L Shape = "L"
)

// Shapes lists every tetromino kind in catalog order.
var Shapes = [7]Shape{I, O, T, S, Z, J, L}

// Point is a cell coordinate or an offset from a tetromino's anchor.
// X grows to the right and Y grows down, row 0 is the top of the stack.
type Point struct {
	X, Y int
}

// Source is the entropy the catalog draws shapes from.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

/*
.	Rotation states, A is the anchor.

.	I	O O A O		. O .
.				. A .
.				. O .
.				. O .

.	O	A O
.		O O

.	T	. . .		. O .		. O .		. O .
.		O A O		O A .		O A O		. A O
.		. O .		. O .		. . .		. O .

State k+1 of T, S, Z, J and L is state k rotated clockwise around the anchor.
*/
var rotations = map[Shape][][4]Point{
	I: {
		{{-2, 0}, {-1, 0}, {0, 0}, {1, 0}},
		{{0, -1}, {0, 0}, {0, 1}, {0, 2}},
	},
	O: {
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	},
	T: {
		{{-1, 0}, {0, 0}, {1, 0}, {0, 1}},
		{{0, -1}, {0, 0}, {0, 1}, {-1, 0}},
		{{1, 0}, {0, 0}, {-1, 0}, {0, -1}},
		{{0, 1}, {0, 0}, {0, -1}, {1, 0}},
	},
	S: {
		{{0, 0}, {1, 0}, {-1, 1}, {0, 1}},
		{{0, 0}, {0, 1}, {-1, -1}, {-1, 0}},
		{{0, 0}, {-1, 0}, {1, -1}, {0, -1}},
		{{0, 0}, {0, -1}, {1, 1}, {1, 0}},
	},
	Z: {
		{{-1, 0}, {0, 0}, {0, 1}, {1, 1}},
		{{0, -1}, {0, 0}, {-1, 0}, {-1, 1}},
		{{1, 0}, {0, 0}, {0, -1}, {-1, -1}},
		{{0, 1}, {0, 0}, {1, 0}, {1, -1}},
	},
	J: {
		{{-1, 0}, {0, 0}, {1, 0}, {-1, 1}},
		{{0, -1}, {0, 0}, {0, 1}, {-1, -1}},
		{{1, 0}, {0, 0}, {-1, 0}, {1, -1}},
		{{0, 1}, {0, 0}, {0, -1}, {1, 1}},
	},
	L: {
		{{-1, 0}, {0, 0}, {1, 0}, {1, 1}},
		{{0, -1}, {0, 0}, {0, 1}, {-1, 1}},
		{{1, 0}, {0, 0}, {-1, 0}, {-1, -1}},
		{{0, 1}, {0, 0}, {0, -1}, {1, -1}},
	},
}

// RotationStates returns the rotation states of s in clockwise order.
// The returned slice is a copy; it is nil for an unknown shape.
func RotationStates(s Shape) [][4]Point {
	r, ok := rotations[s]
	if !ok {
		return nil
	}
	out := make([][4]Point, len(r))
	copy(out, r)
	return out
}

// RandomShape draws one of the seven shapes uniformly from src.
func RandomShape(src Source) Shape {
	return Shapes[src.IntN(len(Shapes))]
}

// Tetromino is the active piece: a shape, its anchor on the stack and
// the index of its current rotation state.
type Tetromino struct {
	Shape    Shape `json:"shape"`
	X        int   `json:"x"`
	Y        int   `json:"y"`
	Rotation int   `json:"rotation"`
}

func newTetromino(s Shape, x, y int) *Tetromino {
	return &Tetromino{Shape: s, X: x, Y: y}
}

// Cells returns the absolute stack coordinates occupied by the tetromino.
func (t *Tetromino) Cells() [4]Point {
	var cells [4]Point
	states := rotations[t.Shape]
	n := len(states)
	for i, o := range states[(t.Rotation%n+n)%n] {
		cells[i] = Point{X: t.X + o.X, Y: t.Y + o.Y}
	}
	return cells
}

func (t *Tetromino) moved(dx, dy int) *Tetromino {
	c := *t
	c.X += dx
	c.Y += dy
	return &c
}

// rotated returns a copy advanced one rotation state, clockwise or not,
// wrapping within the shape's state count.
func (t *Tetromino) rotated(clockwise bool) *Tetromino {
	c := *t
	n := len(rotations[t.Shape])
	step := n - 1
	if clockwise {
		step = 1
	}
	c.Rotation = (c.Rotation + step) % n
	return &c
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
