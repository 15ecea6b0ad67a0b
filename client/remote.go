package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"blockfall/pb"
	"blockfall/tetris"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// remoteGame plays a session hosted by a blockfall server.
type remoteGame struct {
	stream   grpc.BidiStreamingClient[wrapperspb.StringValue, structpb.Struct]
	cancel   context.CancelFunc
	closer   func() error
	updateCh chan *tetris.Snapshot
	doneCh   chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger

	mu        sync.Mutex
	sessionID string
}

func dialRemote(ctx context.Context, addr string, l *slog.Logger) (*remoteGame, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("unable to create gRPC client: %w", err)
	}
	r, err := newRemoteGame(ctx, conn, conn.Close, l)
	if err != nil {
		if cerr := conn.Close(); cerr != nil {
			l.Error("unable to close gRPC client", slog.String("error", cerr.Error()))
		}
		return nil, err
	}
	return r, nil
}

func newRemoteGame(ctx context.Context, cc grpc.ClientConnInterface, closer func() error, l *slog.Logger) (*remoteGame, error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := pb.NewEngineServiceClient(cc).Play(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to create gRPC Play stream: %w", err)
	}
	return &remoteGame{
		stream:   stream,
		cancel:   cancel,
		closer:   closer,
		updateCh: make(chan *tetris.Snapshot),
		doneCh:   make(chan struct{}),
		logger:   l,
	}, nil
}

func (r *remoteGame) Start() {
	go r.receive()
}

func (r *remoteGame) Updates() <-chan *tetris.Snapshot { return r.updateCh }
func (r *remoteGame) Done() <-chan struct{}            { return r.doneCh }

func (r *remoteGame) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

func (r *remoteGame) Action(a tetris.Action) {
	if err := r.stream.Send(pb.Action(a)); err != nil {
		if errors.Is(err, io.EOF) {
			// the real error is reported by Recv.
			return
		}
		r.logger.Error("unable to send action", slog.String("error", err.Error()))
	}
}

// Stop cancels the stream, which ends the session on the server.
func (r *remoteGame) Stop() {
	r.stopOnce.Do(func() {
		r.cancel()
		close(r.doneCh)
		if r.closer == nil {
			return
		}
		if err := r.closer(); err != nil {
			r.logger.Error("unable to close gRPC client", slog.String("error", err.Error()))
		}
	})
}

func (r *remoteGame) receive() {
	defer close(r.updateCh)
	for {
		rcv, err := r.stream.Recv()
		if err != nil {
			r.logRecvError(err)
			return
		}
		id, snap, err := pb.ToSnapshot(rcv)
		if err != nil {
			r.logger.Error("unable to decode snapshot", slog.String("error", err.Error()))
			return
		}
		r.mu.Lock()
		r.sessionID = id
		r.mu.Unlock()
		select {
		case r.updateCh <- snap:
		case <-r.doneCh:
			return
		}
	}
}

func (r *remoteGame) logRecvError(err error) {
	if errors.Is(err, io.EOF) {
		r.logger.Debug("stream.Recv() closed with EOF", slog.String("msg", err.Error()))
		return
	}
	st, ok := status.FromError(err)
	switch {
	case ok && st.Code() == codes.Canceled:
		r.logger.Debug("stream.Recv() closed with Cancel", slog.String("msg", st.Message()))
	case ok && st.Code() == codes.DeadlineExceeded:
		r.logger.Debug("stream.Recv() closed with DeadlineExceeded", slog.String("msg", st.Message()))
	default:
		r.logger.Error("stream.Recv() unable to receive message", slog.String("error", err.Error()))
	}
}
