package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"

	"blockfall/client"
	"blockfall/tetris"

	"golang.org/x/term"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[?25h\r\n"
)

func main() {
	addr := flag.String("addr", "localhost:9000", "blockfall server address for online play")
	name := flag.String("name", "", "player name shown on top of the stack")
	height := flag.Float64("height", 20*tetris.CellSize, "stack height in abstract units")
	seed := flag.Uint64("seed", 0, "seed for the tetromino sequence, 0 picks a random one")
	logFile := flag.String("log", os.DevNull, "log file, the terminal is used by the game")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("unable to open log file: %v", err)
	}
	defer f.Close()
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))

	if _, err := tetris.New(*height); err != nil {
		log.Fatalf("invalid height %v: %v", *height, err)
	}
	opts := &client.Options{
		Height:  *height,
		Address: *addr,
		Name:    *name,
	}
	if *seed != 0 {
		opts.Source = rand.New(rand.NewPCG(*seed, *seed))
	}

	restore := startRawConsole()
	defer restore()

	c, err := client.New(logger, opts)
	if err != nil {
		restore()
		log.Fatalf("unable to start client: %v", err)
	}
	c.Start()
}

func startRawConsole() func() {
	fmt.Print(hideCursor)
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("Error setting terminal to raw mode: %v", err)
	}

	return func() {
		if err := term.Restore(int(os.Stdin.Fd()), oldState); err != nil {
			log.Printf("unable to restore the terminal original state: %v", err)
		}
		fmt.Print(showCursor)
	}
}
