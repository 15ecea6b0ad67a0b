package tetris

// Snapshot is a copy of the engine state that's safe to keep and to read
// concurrently. Nothing in it aliases the engine.
type Snapshot struct {
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Stack     [][]Shape  `json:"stack"`
	Tetromino *Tetromino `json:"tetromino"`
	GameOver  bool       `json:"game_over"`
	// Cleared is the number of lines removed by the command that produced
	// the snapshot.
	Cleared int `json:"cleared"`
}

// Snapshot returns a deep copy of the current state.
func (t *Tetris) Snapshot() *Snapshot {
	return &Snapshot{
		Width:     t.cols,
		Height:    t.rows,
		Stack:     copyStack(t.stack),
		Tetromino: t.tetromino.copy(),
		GameOver:  t.gameOver,
	}
}

// Cell returns the locked shape at x, y or an empty Shape when the cell is
// empty or out of bounds.
func (s *Snapshot) Cell(x, y int) Shape {
	if y < 0 || y >= len(s.Stack) || x < 0 || x >= len(s.Stack[y]) {
		return ""
	}
	return s.Stack[y][x]
}

// Cells returns the cells of the active tetromino, nil when there is none.
func (s *Snapshot) Cells() []Point {
	if s.Tetromino == nil {
		return nil
	}
	cells := s.Tetromino.Cells()
	return cells[:]
}

func copyStack(stack [][]Shape) [][]Shape {
	c := make([][]Shape, len(stack))
	for i := range stack {
		c[i] = make([]Shape, len(stack[i]))
		copy(c[i], stack[i])
	}
	return c
}
