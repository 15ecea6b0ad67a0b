package tetris

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Action string

const (
	MoveLeft    Action = "left"      // Moves the Tetromino one step to the left.
	MoveRight   Action = "right"     // Moves the Tetromino one step to the right.
	MoveDown    Action = "down"      // Moves the Tetromino one step down, same as a tick.
	RotateRight Action = "rotatecw"  // Rotates the Tetromino clockwise.
	RotateLeft  Action = "rotateccw" // Rotates the Tetromino counter-clockwise.
	Restart     Action = "reset"     // Empties the stack and starts over.
)

// ParseAction validates an action name received from outside the process.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case MoveLeft, MoveRight, MoveDown, RotateRight, RotateLeft, Restart:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// DefaultTick is the period between two gravity steps.
const DefaultTick = 500 * time.Millisecond

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

// NewTicker returns a Ticker backed by time.Ticker.
func NewTicker(d time.Duration) Ticker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// Game drives a Tetris: it owns it on a single goroutine, applies a gravity
// step on every tick and player actions as they arrive, and publishes a
// Snapshot after each of them.
type Game struct {
	updateCh chan *Snapshot
	actionCh chan Action
	doneCh   chan struct{}
	stopOnce sync.Once

	tetris *Tetris
	ticker Ticker
	period time.Duration
	logger *slog.Logger
}

// NewGame wraps t. The ticker is reset to period when the game starts.
func NewGame(t *Tetris, ticker Ticker, period time.Duration, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{
		updateCh: make(chan *Snapshot),
		actionCh: make(chan Action),
		doneCh:   make(chan struct{}),
		tetris:   t,
		ticker:   ticker,
		period:   period,
		logger:   logger,
	}
}

// NewDefaultGame creates a stack of the given height driven every DefaultTick.
func NewDefaultGame(height float64, logger *slog.Logger, opts ...Option) (*Game, error) {
	t, err := New(height, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create tetris: %w", err)
	}
	ticker := NewTicker(DefaultTick)
	ticker.Stop()
	return NewGame(t, ticker, DefaultTick, logger), nil
}

// Start publishes the initial state and begins listening for ticks and actions.
func (g *Game) Start() {
	go g.listen()
}

// Stop ends the game loop. It is safe to call more than once.
func (g *Game) Stop() {
	g.stopOnce.Do(func() {
		g.ticker.Stop()
		close(g.doneCh)
	})
}

// Action queues a for the game loop. It returns without effect once the
// game is stopped.
func (g *Game) Action(a Action) {
	select {
	case g.actionCh <- a:
	case <-g.doneCh:
	}
}

// Updates returns the channel snapshots are published on.
func (g *Game) Updates() <-chan *Snapshot {
	return g.updateCh
}

// Done is closed once the game is stopped.
func (g *Game) Done() <-chan struct{} {
	return g.doneCh
}

func (g *Game) listen() {
	if !g.publish(0) {
		return
	}
	if !g.tetris.gameOver {
		g.ticker.Reset(g.period)
	}
	for {
		var cleared int
		select {
		case <-g.ticker.C():
			cleared = g.tetris.Tick()
		case a := <-g.actionCh:
			cleared = g.apply(a)
		case <-g.doneCh:
			return
		}
		if cleared > 0 {
			g.logger.Debug("lines cleared", slog.Int("lines", cleared))
		}
		if g.tetris.gameOver {
			g.ticker.Stop()
		}
		if !g.publish(cleared) {
			return
		}
	}
}

func (g *Game) apply(a Action) int {
	switch a {
	case MoveLeft:
		return g.tetris.Move(-1, 0)
	case MoveRight:
		return g.tetris.Move(1, 0)
	case MoveDown:
		return g.tetris.Move(0, 1)
	case RotateRight:
		g.tetris.Rotate()
	case RotateLeft:
		g.tetris.RotateCounterClockwise()
	case Restart:
		g.tetris.Reset()
		g.ticker.Reset(g.period)
	default:
		g.logger.Warn("ignoring unknown action", slog.String("action", string(a)))
	}
	return 0
}

// publish blocks until the snapshot is read or the game is stopped.
func (g *Game) publish(cleared int) bool {
	s := g.tetris.Snapshot()
	s.Cleared = cleared
	select {
	case g.updateCh <- s:
		return true
	case <-g.doneCh:
		return false
	}
}
