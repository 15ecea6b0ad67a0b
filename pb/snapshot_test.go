package pb_test

import (
	"testing"

	"blockfall/pb"
	"blockfall/tetris"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestSnapshotRoundTrip(t *testing.T) {
	tts := tetris.NewTestTetris(tetris.T)
	tts.Move(0, 1)
	tts.Rotate()
	want := tts.Snapshot()
	require.Equal(t, 1, want.Tetromino.Rotation)
	want.Stack[19][0] = tetris.I
	want.Stack[19][9] = tetris.Z
	want.Stack[18][5] = tetris.O
	want.Cleared = 2

	st, err := pb.FromSnapshot("session-1", want)
	require.NoError(t, err)
	assert.Equal(t, "I........Z", st.GetFields()["rows"].GetListValue().GetValues()[19].GetStringValue())

	id, got, err := pb.ToSnapshot(st)
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
	assert.Equal(t, want, got)
}

func TestSnapshotWithoutTetromino(t *testing.T) {
	want := tetris.NewTestTetris(tetris.J).Snapshot()
	want.Stack[0][4] = tetris.Z
	want.Tetromino = nil
	want.GameOver = true

	st, err := pb.FromSnapshot("", want)
	require.NoError(t, err)
	_, isNull := st.GetFields()["tetromino"].GetKind().(*structpb.Value_NullValue)
	assert.True(t, isNull)

	_, got, err := pb.ToSnapshot(st)
	require.NoError(t, err)
	assert.Nil(t, got.Tetromino)
	assert.True(t, got.GameOver)
	assert.Equal(t, want.Stack, got.Stack)
}

func TestMalformedSnapshot(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
	}{
		{
			name:   "row count doesn't match the height",
			fields: map[string]any{"width": 2, "height": 2, "rows": []any{".."}},
		},
		{
			name:   "row length doesn't match the width",
			fields: map[string]any{"width": 2, "height": 1, "rows": []any{"..."}},
		},
		{
			name:   "unknown shape in the stack",
			fields: map[string]any{"width": 2, "height": 1, "rows": []any{".X"}},
		},
		{
			name: "unknown tetromino shape",
			fields: map[string]any{
				"width": 1, "height": 1, "rows": []any{"."},
				"tetromino": map[string]any{"shape": "Q"},
			},
		},
		{
			name: "negative rotation",
			fields: map[string]any{
				"width": 1, "height": 1, "rows": []any{"."},
				"tetromino": map[string]any{"shape": "T", "rotation": -1},
			},
		},
		{
			name: "rotation past the shape's states",
			fields: map[string]any{
				"width": 1, "height": 1, "rows": []any{"."},
				"tetromino": map[string]any{"shape": "I", "rotation": 2},
			},
		},
		{
			name: "fractional rotation",
			fields: map[string]any{
				"width": 1, "height": 1, "rows": []any{"."},
				"tetromino": map[string]any{"shape": "T", "rotation": 1.5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st, err := structpb.NewStruct(tt.fields)
			require.NoError(t, err)
			_, _, err = pb.ToSnapshot(st)
			assert.ErrorIs(t, err, pb.ErrMalformedSnapshot)
		})
	}
}

func TestAction(t *testing.T) {
	for _, a := range []tetris.Action{tetris.MoveLeft, tetris.MoveRight, tetris.MoveDown, tetris.RotateRight, tetris.RotateLeft, tetris.Restart} {
		got, err := pb.ParseAction(pb.Action(a))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := pb.ParseAction(nil)
	assert.Error(t, err)
}
