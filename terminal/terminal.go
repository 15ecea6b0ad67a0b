// Package terminal renders blockfall snapshots as ANSI text for a raw console.
package terminal

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"text/template"

	"blockfall/tetris"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos    = "\033[H"  // Reset cursor position to 0,0
	clearScreen = "\033[2J" // Clear the whole screen
	eraseLine   = "\033[K"  // Clear from the cursor to the end of the line
	emptyCell   = "  "
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[tetris.Shape]string{
	tetris.I: Cyan,
	tetris.J: Blue,
	tetris.L: Orange,
	tetris.O: Yellow,
	tetris.S: Green,
	tetris.Z: Red,
	tetris.T: Magenta,
}

// Message is the three lines shown under the stack.
type Message struct {
	Line1, Line2, Line3 string
}

func DefaultLobby() Message {
	return Message{Line1: "(p)lay   (o)nline   (q)uit"}
}

func Playing() Message {
	return Message{
		Line1: "move: a d s / arrows",
		Line2: "rotate: e q / up",
		Line3: "(r)estart   (esc) lobby",
	}
}

func GameOver() Message {
	return Message{Line1: "Game Over :)", Line2: "(p)lay   (o)nline   (q)uit"}
}

func Connecting() Message {
	return Message{Line1: "connecting to server...", Line2: "(c)ancel"}
}

func ErrorMessage() Message {
	return Message{Line1: "something went wrong :(", Line2: "(p)lay   (o)nline   (q)uit"}
}

func Spectating(session string) Message {
	return Message{Line1: "watching " + session, Line2: "ctrl+c to quit"}
}

type templateData struct {
	Name     string
	Snapshot *tetris.Snapshot
	Message  Message
}

// Renderer draws the latest snapshot and a message. It is safe for
// concurrent use.
type Renderer struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	*templateData

	mu sync.Mutex
}

// New returns a Renderer writing to w, os.Stdout when w is nil.
// name is shown next to the title.
func New(w io.Writer, l *slog.Logger, name string) (*Renderer, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if w == nil {
		w = os.Stdout
	}
	return &Renderer{
		writer:       w,
		logger:       l,
		template:     tmp,
		templateData: &templateData{Name: name},
	}, nil
}

// Game draws s with the in-game controls.
func (r *Renderer) Game(s *tetris.Snapshot) {
	r.Show(s, Playing())
}

// Show draws s with m under it.
func (r *Renderer) Show(s *tetris.Snapshot, m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Snapshot == nil || r.Snapshot.Height != s.Height {
		fmt.Fprint(r.writer, clearScreen)
	}
	r.Snapshot = s
	r.Message = m
	r.execute()
}

// Lobby keeps the last snapshot on screen and replaces the message.
func (r *Renderer) Lobby(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Message = m
	r.execute()
}

func (r *Renderer) execute() {
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template", slog.String("error", err.Error()))
	}
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"board":  board,
		"border": border,
		"title":  title,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", eraseLine+"\r\n")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

func block(s tetris.Shape) string {
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", colorMap[s])
}

// board renders the locked cells and the active tetromino, one string per row.
func board(s *tetris.Snapshot) []string {
	if s == nil {
		return nil
	}
	rendered := make([][]string, s.Height)
	for y := range rendered {
		rendered[y] = make([]string, s.Width)
		for x := range rendered[y] {
			rendered[y][x] = emptyCell
			if c := s.Cell(x, y); c != "" {
				rendered[y][x] = block(c)
			}
		}
	}
	for _, c := range s.Cells() {
		if c.Y >= 0 && c.Y < s.Height && c.X >= 0 && c.X < s.Width {
			rendered[c.Y][c.X] = block(s.Tetromino.Shape)
		}
	}
	rows := make([]string, s.Height)
	for y := range rendered {
		rows[y] = strings.Join(rendered[y], "")
	}
	return rows
}

func border(s *tetris.Snapshot) string {
	width := tetris.Cols
	if s != nil {
		width = s.Width
	}
	return strings.Repeat("-", width*len(emptyCell))
}

func title(name string) string {
	if name == "" {
		return "\033[1mBlockfall\033[0m"
	}
	return fmt.Sprintf("\033[1mBlockfall\033[0m - %s", name)
}
