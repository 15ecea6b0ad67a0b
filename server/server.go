package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"blockfall/pb"
	"blockfall/tetris"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// GameFactory builds the game behind a new session.
type GameFactory func() (*tetris.Game, error)

type Options struct {
	// Height of the stack in abstract units, see tetris.New.
	Height float64
	// Tick is the gravity period. Defaults to tetris.DefaultTick.
	Tick   time.Duration
	Logger *slog.Logger
	// NewGame overrides how session games are built; Height and Tick are
	// ignored when it is set.
	NewGame GameFactory
}

// Server hosts one game session per Play stream and lets anybody watch
// them over gRPC or websocket.
type Server struct {
	pb.UnimplementedEngineServiceServer
	sessions map[string]*session
	mu       sync.Mutex
	newGame  GameFactory
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func New(o *Options) *Server {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newGame := o.NewGame
	if newGame == nil {
		tick := o.Tick
		if tick <= 0 {
			tick = tetris.DefaultTick
		}
		newGame = func() (*tetris.Game, error) {
			t, err := tetris.New(o.Height)
			if err != nil {
				return nil, err
			}
			ticker := tetris.NewTicker(tick)
			ticker.Stop()
			return tetris.NewGame(t, ticker, tick, logger), nil
		}
	}
	return &Server{
		sessions: make(map[string]*session),
		newGame:  newGame,
		logger:   logger,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}
}

func (s *Server) Play(stream grpc.BidiStreamingServer[wrapperspb.StringValue, structpb.Struct]) error {
	game, err := s.newGame()
	if err != nil {
		return status.Errorf(codes.Internal, "unable to create game: %v", err)
	}
	sess := s.open(game)
	defer s.close(sess.id)
	updates, unsubscribe := sess.subscribe()
	defer unsubscribe()
	sess.start()

	logger := s.logger.With(slog.String("session", sess.id))
	logger.Info("session started")

	errCh := make(chan error, 1)
	go func() {
		for {
			rcv, err := stream.Recv()
			if err != nil {
				errCh <- err
				return
			}
			a, err := pb.ParseAction(rcv)
			if err != nil {
				errCh <- status.Error(codes.InvalidArgument, err.Error())
				return
			}
			game.Action(a)
		}
	}()

	ctx := stream.Context()
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if err := send(stream, sess.id, snap); err != nil {
				return err
			}
		case err := <-errCh:
			if errors.Is(err, io.EOF) {
				logger.Info("session closed by the player")
				return nil
			}
			logger.Debug("session ended", slog.String("error", err.Error()))
			return err
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		}
	}
}

func (s *Server) Watch(in *wrapperspb.StringValue, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	sess, ok := s.session(in.GetValue())
	if !ok {
		return status.Errorf(codes.NotFound, "session %q not found", in.GetValue())
	}
	updates, unsubscribe := sess.subscribe()
	defer unsubscribe()

	ctx := stream.Context()
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if err := send(stream, sess.id, snap); err != nil {
				return err
			}
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		}
	}
}

type snapshotSender interface {
	Send(*structpb.Struct) error
}

func send(stream snapshotSender, id string, snap *tetris.Snapshot) error {
	msg, err := pb.FromSnapshot(id, snap)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if err := stream.Send(msg); err != nil {
		return fmt.Errorf("failed to send snapshot: %w", err)
	}
	return nil
}

// Sessions returns the ids of the running sessions, sorted.
func (s *Server) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Server) open(game *tetris.Game) *session {
	sess := newSession(uuid.New().String(), game)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess
	return sess
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) close(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		sess.close()
	}
}
