package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"blockfall/pb"

	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Watch renders every snapshot of a remote session until the session ends
// or ctx is done. A session that ends normally returns nil.
func Watch(ctx context.Context, c pb.EngineServiceClient, session string, r *Renderer) error {
	stream, err := c.Watch(ctx, wrapperspb.String(session))
	if err != nil {
		return fmt.Errorf("unable to watch session %q: %w", session, err)
	}
	msg := Spectating(session)
	for {
		rcv, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.Lobby(Message{Line1: "session ended"})
				return nil
			}
			return fmt.Errorf("unable to receive snapshot: %w", err)
		}
		_, snap, err := pb.ToSnapshot(rcv)
		if err != nil {
			return err
		}
		if snap.GameOver {
			r.Show(snap, Message{Line1: "Game Over :)", Line2: msg.Line2})
			continue
		}
		r.Show(snap, msg)
	}
}
