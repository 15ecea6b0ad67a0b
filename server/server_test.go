package server

import (
	"context"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"blockfall/pb"
	"blockfall/tetris"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// testGames builds sessions around O tetrominoes and manual tickers, so
// nothing moves unless the test says so.
func testGames() GameFactory {
	return func() (*tetris.Game, error) {
		g, _ := tetris.NewTestGame(tetris.NewTestTetris(tetris.O))
		return g, nil
	}
}

func TestPlay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := New(&Options{NewGame: testGames()})
	client, closer := testServer(srv)
	defer closer()

	stream, err := client.Play(ctx)
	require.NoError(t, err)

	id, snap := recvSnapshot(t, stream)
	assert.NotEmpty(t, id)
	require.NotNil(t, snap.Tetromino)
	assert.Equal(t, tetris.Tetromino{Shape: tetris.O, X: 4, Y: 0}, *snap.Tetromino)
	assert.Equal(t, []string{id}, srv.Sessions())

	actions := []struct {
		action       tetris.Action
		wantX, wantY int
	}{
		{tetris.MoveLeft, 3, 0},
		{tetris.MoveDown, 3, 1},
		{tetris.MoveRight, 4, 1},
	}
	for _, a := range actions {
		require.NoError(t, stream.Send(pb.Action(a.action)))
		gotID, snap := recvSnapshot(t, stream)
		assert.Equal(t, id, gotID)
		assert.Equal(t, a.wantX, snap.Tetromino.X, a.action)
		assert.Equal(t, a.wantY, snap.Tetromino.Y, a.action)
	}

	require.NoError(t, stream.CloseSend())
	assert.Eventually(t, func() bool { return len(srv.Sessions()) == 0 }, time.Second, 10*time.Millisecond)
}

func TestPlayInvalidAction(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := New(&Options{NewGame: testGames()})
	client, closer := testServer(srv)
	defer closer()

	stream, err := client.Play(ctx)
	require.NoError(t, err)
	recvSnapshot(t, stream)

	require.NoError(t, stream.Send(wrapperspb.String("drop")))
	for {
		_, err = stream.Recv()
		if err != nil {
			break
		}
	}
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := New(&Options{NewGame: testGames()})
	client, closer := testServer(srv)
	defer closer()

	t.Run("unknown session", func(t *testing.T) {
		watch, err := client.Watch(ctx, wrapperspb.String("nope"))
		require.NoError(t, err)
		_, err = watch.Recv()
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("watchers get the player's snapshots", func(t *testing.T) {
		play, err := client.Play(ctx)
		require.NoError(t, err)
		id, _ := recvSnapshot(t, play)

		watch, err := client.Watch(ctx, wrapperspb.String(id))
		require.NoError(t, err)
		// the latest snapshot comes first.
		gotID, snap := recvSnapshot(t, watch)
		assert.Equal(t, id, gotID)
		assert.Equal(t, 4, snap.Tetromino.X)

		require.NoError(t, play.Send(pb.Action(tetris.MoveRight)))
		recvSnapshot(t, play)
		_, snap = recvSnapshot(t, watch)
		assert.Equal(t, 5, snap.Tetromino.X)

		// the watch ends with the session.
		require.NoError(t, play.CloseSend())
		for {
			if _, err = watch.Recv(); err != nil {
				break
			}
		}
		assert.ErrorIs(t, err, io.EOF)
	})
}

type snapshotReceiver interface {
	Recv() (*structpb.Struct, error)
}

func recvSnapshot(t *testing.T, stream snapshotReceiver) (string, *tetris.Snapshot) {
	t.Helper()
	msg, err := stream.Recv()
	require.NoError(t, err)
	id, snap, err := pb.ToSnapshot(msg)
	require.NoError(t, err)
	return id, snap
}

func testServer(srv *Server) (pb.EngineServiceClient, func()) {
	buffer := 1024 * 1024
	lis := bufconn.Listen(buffer)

	s := grpc.NewServer()
	pb.RegisterEngineServiceServer(s, srv)
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Printf("unable to serve: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet", grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Printf("error connecting to server: %v", err)
	}

	closer := func() {
		if err := conn.Close(); err != nil {
			log.Printf("error closing connection: %v", err)
		}
		if err := lis.Close(); err != nil {
			log.Printf("error closing listener: %v", err)
		}
		s.Stop()
	}

	return pb.NewEngineServiceClient(conn), closer
}

// cancelledStream is a server stream whose client went away.
type cancelledStream struct {
	grpc.ServerStream
	ctx   context.Context
	block chan struct{}
}

func (c *cancelledStream) Context() context.Context    { return c.ctx }
func (c *cancelledStream) Send(*structpb.Struct) error { return nil }
func (c *cancelledStream) Recv() (*wrapperspb.StringValue, error) {
	<-c.block
	return nil, io.EOF
}

func TestCancelledStreams(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stream := &cancelledStream{ctx: ctx, block: make(chan struct{})}
	defer close(stream.block)

	t.Run("play", func(t *testing.T) {
		srv := New(&Options{NewGame: testGames()})
		err := srv.Play(stream)
		assert.Equal(t, codes.Canceled, status.Code(err))
		assert.Empty(t, srv.Sessions())
	})

	t.Run("watch", func(t *testing.T) {
		srv := New(&Options{NewGame: testGames()})
		game, err := srv.newGame()
		require.NoError(t, err)
		sess := srv.open(game)
		defer srv.close(sess.id)

		err = srv.Watch(wrapperspb.String(sess.id), stream)
		_, isStatus := status.FromError(err)
		assert.True(t, isStatus, "wanted a gRPC status, got %v", err)
		assert.Equal(t, codes.Canceled, status.Code(err))
	})
}
