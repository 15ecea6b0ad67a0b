package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"blockfall/pb"
	"blockfall/server"
	"blockfall/tetris"

	"google.golang.org/grpc"
)

func main() {
	port := flag.Int("port", 9000, "gRPC port")
	wsAddr := flag.String("ws", ":9001", "address for the websocket spectators, empty to disable")
	height := flag.Float64("height", 20*tetris.CellSize, "stack height in abstract units")
	tick := flag.Duration("tick", tetris.DefaultTick, "gravity period")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if _, err := tetris.New(*height); err != nil {
		log.Fatalf("invalid height %v: %v", *height, err)
	}
	srv := server.New(&server.Options{
		Height: *height,
		Tick:   *tick,
		Logger: logger,
	})

	if *wsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/spectate", srv.SpectateHandler())
		mux.Handle("/sessions", srv.SessionsHandler())
		hs := &http.Server{Addr: *wsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("serving spectators", slog.String("addr", *wsAddr))
			if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("spectator server stopped", slog.String("error", err.Error()))
			}
		}()
		defer hs.Close()
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	defer lis.Close()
	s := grpc.NewServer()
	defer s.Stop()
	pb.RegisterEngineServiceServer(s, srv)

	logger.Info("starting server", slog.Int("port", *port))
	if err := s.Serve(lis); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
