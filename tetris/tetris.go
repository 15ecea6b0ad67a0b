// Package tetris contains the falling-block engine: the tetromino catalog,
// the stack with its collision, lock and line clear rules, and the Game
// driver that feeds it ticks and player actions.
package tetris

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

const (
	// Cols is the fixed width of the stack.
	Cols = 10
	// CellSize is the estimated size of one cell, in the same abstract
	// units as the height given to New.
	CellSize = 30.0

	spawnX = Cols/2 - 1
	spawnY = 0
)

// ErrBoardTooSmall is returned by New when the height doesn't fit a single row.
var ErrBoardTooSmall = errors.New("height is too small for a single row")

// Tetris holds the stack, the active tetromino and the game over flag.
// Other packages read its state through Snapshot.
// It is not safe for concurrent use; Game serializes access to it.
type Tetris struct {
	// stack is the playfield, indexed [row][col] with row 0 on top.
	// An empty Shape is an empty cell, otherwise the shape that was locked there.
	stack     [][]Shape
	tetromino *Tetromino
	gameOver  bool

	rows, cols int
	src        Source
}

type Option func(*Tetris)

// WithSource sets the entropy used to draw new tetrominoes.
func WithSource(src Source) Option {
	return func(t *Tetris) { t.src = src }
}

// New creates an empty stack whose row count is derived once from height
// and spawns the first tetromino.
func New(height float64, opts ...Option) (*Tetris, error) {
	rows := int(math.Floor(height / CellSize))
	if rows < 1 {
		return nil, ErrBoardTooSmall
	}
	seed := uint64(time.Now().UnixNano())
	t := &Tetris{
		rows: rows,
		cols: Cols,
		src:  rand.New(rand.NewPCG(seed, seed>>1)),
	}
	for _, o := range opts {
		o(t)
	}
	t.stack = emptyStack(t.rows, t.cols)
	t.Spawn()
	return t, nil
}

func (t *Tetris) Rows() int { return t.rows }
func (t *Tetris) Cols() int { return t.cols }

// Spawn draws a new tetromino at the top center of the stack.
// If it doesn't fit the game is over and there is no active tetromino.
func (t *Tetris) Spawn() {
	if t.gameOver {
		return
	}
	tetromino := newTetromino(RandomShape(t.src), spawnX, spawnY)
	if !t.isValid(tetromino) {
		t.gameOver = true
		t.tetromino = nil
		return
	}
	t.tetromino = tetromino
}

// Move translates the tetromino by dx, dy. A blocked downward move locks
// the tetromino, clears complete lines and spawns the next one; any other
// blocked move is ignored. It returns the number of lines cleared.
func (t *Tetris) Move(dx, dy int) int {
	if t.gameOver || t.tetromino == nil {
		return 0
	}
	moved := t.tetromino.moved(dx, dy)
	if t.isValid(moved) {
		t.tetromino = moved
		return 0
	}
	if dy <= 0 {
		return 0
	}
	t.lock()
	cleared := t.clearLines()
	t.Spawn()
	return cleared
}

// Tick is the gravity step, a one row downward move.
func (t *Tetris) Tick() int {
	return t.Move(0, 1)
}

// Rotate rotates the tetromino clockwise. There are no wall kicks:
// a rotation that doesn't fit in place is ignored.
func (t *Tetris) Rotate() {
	t.rotate(true)
}

// RotateCounterClockwise undoes a Rotate when the position allows it.
func (t *Tetris) RotateCounterClockwise() {
	t.rotate(false)
}

func (t *Tetris) rotate(clockwise bool) {
	if t.gameOver || t.tetromino == nil {
		return
	}
	rotated := t.tetromino.rotated(clockwise)
	if t.isValid(rotated) {
		t.tetromino = rotated
	}
}

// Reset empties the stack, clears the game over flag and spawns a new tetromino.
func (t *Tetris) Reset() {
	t.gameOver = false
	t.stack = emptyStack(t.rows, t.cols)
	t.tetromino = nil
	t.Spawn()
}

// isValid reports whether every cell of tm is inside the stack and empty.
// Rows above the top of the stack are out of bounds.
func (t *Tetris) isValid(tm *Tetromino) bool {
	for _, c := range tm.Cells() {
		if c.X < 0 || c.X >= t.cols || c.Y < 0 || c.Y >= t.rows {
			return false
		}
		if t.stack[c.Y][c.X] != "" {
			return false
		}
	}
	return true
}

// lock copies the tetromino cells into the stack and clears the active tetromino.
func (t *Tetris) lock() {
	if t.tetromino == nil {
		return
	}
	for _, c := range t.tetromino.Cells() {
		if c.X < 0 || c.X >= t.cols || c.Y < 0 || c.Y >= t.rows {
			continue
		}
		t.stack[c.Y][c.X] = t.tetromino.Shape
	}
	t.tetromino = nil
}

// clearLines removes complete rows, shifts the remaining ones down and
// refills the top with empty rows. It returns the number of rows removed.
func (t *Tetris) clearLines() int {
	kept := make([][]Shape, 0, t.rows)
	for _, row := range t.stack {
		if !isComplete(row) {
			kept = append(kept, row)
		}
	}
	cleared := t.rows - len(kept)
	if cleared == 0 {
		return 0
	}
	t.stack = append(emptyStack(cleared, t.cols), kept...)
	return cleared
}

func isComplete(row []Shape) bool {
	for _, c := range row {
		if c == "" {
			return false
		}
	}
	return true
}

func emptyStack(rows, cols int) [][]Shape {
	stack := make([][]Shape, rows)
	for i := range stack {
		stack[i] = make([]Shape, cols)
	}
	return stack
}
