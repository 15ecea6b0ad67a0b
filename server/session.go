package server

import (
	"sync"

	"blockfall/tetris"
)

// watcherBuffer is how many snapshots a slow watcher can fall behind before
// its oldest ones are dropped.
const watcherBuffer = 16

// session is a running game and the watchers of its snapshots.
// The player's own stream is one more watcher.
type session struct {
	id   string
	game *tetris.Game

	mu       sync.Mutex
	watchers map[chan *tetris.Snapshot]struct{}
	last     *tetris.Snapshot
	closed   bool
	doneCh   chan struct{}
}

func newSession(id string, game *tetris.Game) *session {
	return &session{
		id:       id,
		game:     game,
		watchers: make(map[chan *tetris.Snapshot]struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (s *session) start() {
	go s.fanOut()
	s.game.Start()
}

func (s *session) fanOut() {
	for {
		select {
		case snap := <-s.game.Updates():
			s.mu.Lock()
			s.last = snap
			for ch := range s.watchers {
				select {
				case ch <- snap:
				default:
					// full: drop the oldest so the latest snapshot always lands.
					select {
					case <-ch:
					default:
					}
					ch <- snap
				}
			}
			s.mu.Unlock()
		case <-s.doneCh:
			return
		}
	}
}

// subscribe returns a channel receiving every snapshot from now on, starting
// with the latest one if any, and the func that releases it.
func (s *session) subscribe() (<-chan *tetris.Snapshot, func()) {
	ch := make(chan *tetris.Snapshot, watcherBuffer)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	if s.last != nil {
		ch <- s.last
	}
	s.watchers[ch] = struct{}{}
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}
}

// close stops the game and ends every watcher's channel.
func (s *session) close() {
	s.game.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.doneCh)
	for ch := range s.watchers {
		delete(s.watchers, ch)
		close(ch)
	}
}
