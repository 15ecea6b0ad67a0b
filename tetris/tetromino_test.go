package tetris

import (
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestRotationStates(t *testing.T) {
	wantStates := map[Shape]int{I: 2, O: 1, T: 4, S: 4, Z: 4, J: 4, L: 4}

	for _, shape := range Shapes {
		t.Run(string(shape), func(t *testing.T) {
			t.Parallel()
			states := RotationStates(shape)
			if len(states) != wantStates[shape] {
				t.Fatalf("wanted %d rotation states, got %d", wantStates[shape], len(states))
			}
			for i, state := range states {
				seen := map[Point]bool{}
				for _, p := range state {
					seen[p] = true
				}
				if len(seen) != 4 {
					t.Errorf("state %d: wanted 4 distinct cells, got %v", i, state)
				}
			}
			for _, p := range states[0] {
				if p.Y < 0 {
					t.Errorf("spawn state reaches above the anchor: %v", states[0])
				}
			}
			if len(states) != 4 {
				return
			}
			for i, state := range states {
				next := states[(i+1)%4]
				if !sameCells(rotateClockwise(state), next) {
					t.Errorf("state %d rotated clockwise is %v, wanted %v", i, rotateClockwise(state), next)
				}
			}
		})
	}

	t.Run("returned states are a copy", func(t *testing.T) {
		t.Parallel()
		states := RotationStates(T)
		states[0][0] = Point{X: 9, Y: 9}
		if reflect.DeepEqual(RotationStates(T), states) {
			t.Error("catalog was modified through the returned states")
		}
	})

	t.Run("unknown shape has no states", func(t *testing.T) {
		t.Parallel()
		if RotationStates("X") != nil {
			t.Error("wanted nil for an unknown shape")
		}
	})
}

func TestTetrominoCells(t *testing.T) {
	tests := []struct {
		name         string
		shape        Shape
		rotation     int
		wantRotation int
	}{
		{"in range", T, 2, 2},
		{"negative wraps from the last state", T, -1, 3},
		{"negative wraps for two states", I, -3, 1},
		{"past the last state wraps", J, 5, 1},
		{"single state", O, -7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tm := &Tetromino{Shape: tt.shape, X: 4, Y: 4, Rotation: tt.rotation}
			want := (&Tetromino{Shape: tt.shape, X: 4, Y: 4, Rotation: tt.wantRotation}).Cells()
			if got := tm.Cells(); got != want {
				t.Errorf("wanted %v, got %v", want, got)
			}
		})
	}
}

func TestRandomShape(t *testing.T) {
	t.Run("sequence source is deterministic", func(t *testing.T) {
		t.Parallel()
		src := NewSequenceSource(S, Z, I)
		for _, want := range []Shape{S, Z, I, S} {
			if got := RandomShape(src); got != want {
				t.Errorf("wanted %v, got %v", want, got)
			}
		}
	})

	t.Run("same seed draws the same shapes", func(t *testing.T) {
		t.Parallel()
		a := rand.New(rand.NewPCG(1, 2))
		b := rand.New(rand.NewPCG(1, 2))
		for range 50 {
			if RandomShape(a) != RandomShape(b) {
				t.Fatal("wanted the same sequence for the same seed")
			}
		}
	})

	t.Run("every shape is drawn", func(t *testing.T) {
		t.Parallel()
		src := rand.New(rand.NewPCG(7, 7))
		seen := map[Shape]int{}
		for range 7000 {
			seen[RandomShape(src)]++
		}
		for _, s := range Shapes {
			if seen[s] < 700 {
				t.Errorf("shape %v drawn %d times out of 7000", s, seen[s])
			}
		}
	})
}

func rotateClockwise(state [4]Point) [4]Point {
	var out [4]Point
	for i, p := range state {
		out[i] = Point{X: -p.Y, Y: p.X}
	}
	return out
}

func sameCells(a, b [4]Point) bool {
	set := map[Point]bool{}
	for _, p := range a {
		set[p] = true
	}
	for _, p := range b {
		if !set[p] {
			return false
		}
	}
	return true
}
