package tetris

import (
	"slices"
	"sync"
	"time"
)

// TestHeight gives a 20 rows stack.
const TestHeight = 20 * CellSize

// MockTicker is a manual Ticker for tests.
type MockTicker struct {
	ch          chan time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker          { return &MockTicker{ch: make(chan time.Time)} }
func (m *MockTicker) C() <-chan time.Time { return m.ch }
func (m *MockTicker) Tick()               { m.ch <- time.Now() }
func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
	m.reset = false
}
func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
	m.stop = false
}
func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}
func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// SequenceSource draws the given shapes in order, over and over.
type SequenceSource struct {
	shapes []Shape
	next   int
}

func NewSequenceSource(shapes ...Shape) *SequenceSource {
	return &SequenceSource{shapes: shapes}
}

func (s *SequenceSource) IntN(int) int {
	shape := s.shapes[s.next%len(s.shapes)]
	s.next++
	return slices.Index(Shapes[:], shape)
}

// NewTestTetris creates a 20 rows Tetris that only spawns the given shape.
func NewTestTetris(shape Shape) *Tetris {
	t, err := New(TestHeight, WithSource(NewSequenceSource(shape)))
	if err != nil {
		panic(err)
	}
	return t
}

// NewTestTetrisFrom creates a test Tetris holding a copy of s, for tests
// that need a stack built up front. New tetrominoes are drawn from shape.
func NewTestTetrisFrom(shape Shape, s *Snapshot) *Tetris {
	t, err := New(float64(s.Height)*CellSize, WithSource(NewSequenceSource(shape)))
	if err != nil {
		panic(err)
	}
	t.stack = copyStack(s.Stack)
	t.tetromino = s.Tetromino.copy()
	t.gameOver = s.GameOver
	return t
}

// NewTestGame creates a game around t and returns it with its manual ticker.
func NewTestGame(t *Tetris) (*Game, *MockTicker) {
	ticker := NewMockTicker()
	return NewGame(t, ticker, DefaultTick, nil), ticker
}
