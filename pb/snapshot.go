package pb

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"blockfall/tetris"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const emptyCell = '.'

var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Action encodes a player action for the Play stream.
func Action(a tetris.Action) *wrapperspb.StringValue {
	return wrapperspb.String(string(a))
}

// ParseAction decodes an action received on the Play stream.
func ParseAction(v *wrapperspb.StringValue) (tetris.Action, error) {
	return tetris.ParseAction(v.GetValue())
}

// FromSnapshot encodes s as a Struct tagged with the session it belongs to.
//
//	{
//	  "session_id": "…",
//	  "width": 10, "height": 20, "cleared": 0, "game_over": false,
//	  "rows": ["..........", "...IIII...", …],
//	  "tetromino": {"shape": "T", "x": 4, "y": 0, "rotation": 0} | null
//	}
func FromSnapshot(sessionID string, s *tetris.Snapshot) (*structpb.Struct, error) {
	rows := make([]any, len(s.Stack))
	for y, r := range s.Stack {
		var b strings.Builder
		for _, c := range r {
			if c == "" {
				b.WriteByte(emptyCell)
				continue
			}
			b.WriteString(string(c))
		}
		rows[y] = b.String()
	}
	var tetromino any
	if s.Tetromino != nil {
		tetromino = map[string]any{
			"shape":    string(s.Tetromino.Shape),
			"x":        s.Tetromino.X,
			"y":        s.Tetromino.Y,
			"rotation": s.Tetromino.Rotation,
		}
	}
	st, err := structpb.NewStruct(map[string]any{
		"session_id": sessionID,
		"width":      s.Width,
		"height":     s.Height,
		"cleared":    s.Cleared,
		"game_over":  s.GameOver,
		"rows":       rows,
		"tetromino":  tetromino,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to encode snapshot: %w", err)
	}
	return st, nil
}

// ToSnapshot decodes a Struct built by FromSnapshot and returns the
// session id along with the snapshot.
func ToSnapshot(st *structpb.Struct) (string, *tetris.Snapshot, error) {
	f := st.GetFields()
	s := &tetris.Snapshot{
		Width:    int(f["width"].GetNumberValue()),
		Height:   int(f["height"].GetNumberValue()),
		Cleared:  int(f["cleared"].GetNumberValue()),
		GameOver: f["game_over"].GetBoolValue(),
	}

	rows := f["rows"].GetListValue().GetValues()
	if len(rows) != s.Height {
		return "", nil, fmt.Errorf("%w: %d rows for height %d", ErrMalformedSnapshot, len(rows), s.Height)
	}
	s.Stack = make([][]tetris.Shape, len(rows))
	for y, v := range rows {
		row := v.GetStringValue()
		if len(row) != s.Width {
			return "", nil, fmt.Errorf("%w: row %d has %d cells for width %d", ErrMalformedSnapshot, y, len(row), s.Width)
		}
		s.Stack[y] = make([]tetris.Shape, s.Width)
		for x, c := range []byte(row) {
			if c == emptyCell {
				continue
			}
			shape, err := parseShape(string(c))
			if err != nil {
				return "", nil, fmt.Errorf("row %d: %w", y, err)
			}
			s.Stack[y][x] = shape
		}
	}

	if t := f["tetromino"].GetStructValue(); t != nil {
		tf := t.GetFields()
		shape, err := parseShape(tf["shape"].GetStringValue())
		if err != nil {
			return "", nil, fmt.Errorf("tetromino: %w", err)
		}
		rotation := tf["rotation"].GetNumberValue()
		if states := len(tetris.RotationStates(shape)); rotation < 0 || rotation >= float64(states) || rotation != math.Trunc(rotation) {
			return "", nil, fmt.Errorf("%w: rotation %v for %s", ErrMalformedSnapshot, rotation, shape)
		}
		s.Tetromino = &tetris.Tetromino{
			Shape:    shape,
			X:        int(tf["x"].GetNumberValue()),
			Y:        int(tf["y"].GetNumberValue()),
			Rotation: int(rotation),
		}
	}
	return f["session_id"].GetStringValue(), s, nil
}

func parseShape(s string) (tetris.Shape, error) {
	for _, shape := range tetris.Shapes {
		if string(shape) == s {
			return shape, nil
		}
	}
	return "", fmt.Errorf("%w: unknown shape %q", ErrMalformedSnapshot, s)
}
