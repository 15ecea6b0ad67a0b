package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"blockfall/pb"
	"blockfall/terminal"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	hideCursor = "\033[2J\033[?25l"
	showCursor = "\033[?25h\r\n"
)

func main() {
	addr := flag.String("addr", "localhost:9000", "blockfall server address")
	session := flag.String("session", "", "id of the session to watch")
	logFile := flag.String("log", os.DevNull, "log file")
	flag.Parse()

	if *session == "" {
		log.Fatal("missing -session")
	}
	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("unable to open log file: %v", err)
	}
	defer f.Close()
	logger := slog.New(slog.NewJSONHandler(f, nil))

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("unable to connect to %s: %v", *addr, err)
	}
	defer conn.Close()

	r, err := terminal.New(os.Stdout, logger, *session)
	if err != nil {
		log.Fatalf("unable to create renderer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Print(hideCursor)
	err = terminal.Watch(ctx, pb.NewEngineServiceClient(conn), *session, r)
	fmt.Print(showCursor)
	if err != nil && ctx.Err() == nil {
		logger.Error("watch ended", slog.String("error", err.Error()))
		log.Fatalf("unable to watch session: %v", err)
	}
}
