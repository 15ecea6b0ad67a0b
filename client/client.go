package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"blockfall/terminal"
	"blockfall/tetris"

	"github.com/eiannone/keyboard"
)

type clientState int

const (
	lobby clientState = iota
	waiting
	playing
)

// tetrisGame is what the client drives, either a local tetris.Game or a
// session on a remote server.
type tetrisGame interface {
	Start()
	Updates() <-chan *tetris.Snapshot
	Action(tetris.Action)
	Stop()
	Done() <-chan struct{}
}

type renderer interface {
	Game(*tetris.Snapshot)
	Lobby(terminal.Message)
}

type state struct {
	current clientState
	game    tetrisGame
	cancel  context.CancelFunc
	mu      sync.Mutex
}

func (s *state) get() (clientState, tetrisGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.game
}

func (s *state) set(c clientState, g tetrisGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
	s.game = g
}

type Client struct {
	newLocal  func() (tetrisGame, error)
	newRemote func(context.Context) (tetrisGame, error)
	render    renderer
	logger    *slog.Logger
	kbCh      <-chan keyboard.KeyEvent
	state     *state
}

type Options struct {
	// Height of the stack in abstract units, see tetris.New.
	Height  float64
	Address string
	Name    string
	// Source feeds local games, nil picks a random seed.
	Source tetris.Source
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	r, err := terminal.New(nil, l, o.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	var opts []tetris.Option
	if o.Source != nil {
		opts = append(opts, tetris.WithSource(o.Source))
	}
	return &Client{
		newLocal: func() (tetrisGame, error) {
			return tetris.NewDefaultGame(o.Height, l, opts...)
		},
		newRemote: func(ctx context.Context) (tetrisGame, error) {
			return dialRemote(ctx, o.Address, l)
		},
		render: r,
		logger: l,
		kbCh:   kb,
		state:  &state{current: lobby},
	}, nil
}

// Start shows the lobby and blocks until the player quits.
func (c *Client) Start() {
	c.render.Lobby(terminal.DefaultLobby())
	var wg sync.WaitGroup
	wg.Add(1)
	go c.listenKB(&wg)
	wg.Wait()
	if _, g := c.state.get(); g != nil {
		g.Stop()
	}
}

func (c *Client) listenKB(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		current, game := c.state.get()
		switch current {
		case lobby:
			switch event.Rune {
			case 'p':
				c.playLocal()
			case 'o':
				c.playOnline()
			case 'q':
				return
			}
		case waiting:
			if event.Rune == 'c' {
				c.state.mu.Lock()
				cancel := c.state.cancel
				c.state.mu.Unlock()
				if cancel != nil {
					cancel()
				}
			}
		case playing:
			if event.Key == keyboard.KeyEsc {
				game.Stop()
				continue
			}
			if a, ok := keyAction(event); ok {
				game.Action(a)
			}
		}
	}
}

func keyAction(event keyboard.KeyEvent) (tetris.Action, bool) {
	switch {
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		return tetris.MoveDown, true
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		return tetris.MoveLeft, true
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		return tetris.MoveRight, true
	case event.Key == keyboard.KeyArrowUp || event.Rune == 'e':
		return tetris.RotateRight, true
	case event.Rune == 'q':
		return tetris.RotateLeft, true
	case event.Rune == 'r':
		return tetris.Restart, true
	}
	return "", false
}

func (c *Client) playLocal() {
	game, err := c.newLocal()
	if err != nil {
		c.logger.Error("unable to create local game", slog.String("error", err.Error()))
		c.render.Lobby(terminal.ErrorMessage())
		return
	}
	c.state.set(playing, game)
	go c.listenTetris(game)
}

func (c *Client) playOnline() {
	ctx, cancel := context.WithCancel(context.Background())
	c.state.mu.Lock()
	c.state.current = waiting
	c.state.cancel = cancel
	c.state.mu.Unlock()
	c.render.Lobby(terminal.Connecting())

	go func() {
		defer cancel()
		game, err := c.newRemote(ctx)
		if err != nil {
			c.logger.Error("unable to join server", slog.String("error", err.Error()))
			c.state.set(lobby, nil)
			c.render.Lobby(terminal.ErrorMessage())
			return
		}
		c.state.set(playing, game)
		c.listenTetris(game)
	}()
}

// listenTetris renders every update until the game is over or its updates
// stop, then goes back to the lobby.
func (c *Client) listenTetris(game tetrisGame) {
	defer func() {
		game.Stop()
		c.state.set(lobby, nil)
	}()
	game.Start()
	for {
		select {
		case u, ok := <-game.Updates():
			if !ok {
				c.render.Lobby(terminal.DefaultLobby())
				return
			}
			c.render.Game(u)
			if u.GameOver {
				c.render.Lobby(terminal.GameOver())
				return
			}
		case <-game.Done():
			c.render.Lobby(terminal.DefaultLobby())
			return
		}
	}
}
