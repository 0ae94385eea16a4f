package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"
)

func TestParseHandedness(t *testing.T) {
	tests := []struct {
		label string
		want  Handedness
	}{
		{"Left", Left},
		{"Right", Right},
		{"left", Unknown},
		{"RIGHT", Unknown},
		{"", Unknown},
		{"Both", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseHandedness(tt.label); got != tt.want {
				t.Errorf("ParseHandedness(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestHand_JSON(t *testing.T) {
	t.Run("handedness decodes from detector label", func(t *testing.T) {
		var h Hand
		err := json.Unmarshal([]byte(`{"points":[{"x":0.1,"y":0.2,"z":0}],"handedness":"Left","score":0.9}`), &h)
		if err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if h.Handedness != Left {
			t.Errorf("expected Left, got %v", h.Handedness)
		}
		if len(h.Points) != 1 {
			t.Errorf("expected 1 point kept as reported, got %d", len(h.Points))
		}
	})

	t.Run("unknown label decodes to Unknown", func(t *testing.T) {
		var h Hand
		if err := json.Unmarshal([]byte(`{"handedness":"Ambidextrous"}`), &h); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if h.Handedness != Unknown {
			t.Errorf("expected Unknown, got %v", h.Handedness)
		}
	})

	t.Run("handedness encodes as label", func(t *testing.T) {
		data, err := json.Marshal(OpenHand(Right))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Contains(data, []byte(`"handedness":"Right"`)) {
			t.Errorf("expected Right label in %s", data)
		}
	})
}

func TestHand_Valid(t *testing.T) {
	full := OpenHand(Left)
	short := Hand{Points: make([]Point3D, 20), Handedness: Left}
	long := Hand{Points: make([]Point3D, 22), Handedness: Left}
	var missing *Hand

	if !full.Valid() {
		t.Error("expected 21-point hand to be valid")
	}
	if short.Valid() {
		t.Error("expected 20-point hand to be invalid")
	}
	if long.Valid() {
		t.Error("expected 22-point hand to be invalid")
	}
	if missing.Valid() {
		t.Error("expected nil hand to be invalid")
	}

	for name, v := range map[string]float64{"NaN": math.NaN(), "+Inf": math.Inf(1), "-Inf": math.Inf(-1)} {
		bad := OpenHand(Left)
		bad.Points[ThumbTip].X = v
		if bad.Valid() {
			t.Errorf("expected a hand with a %s coordinate to be invalid", name)
		}
	}
}

func TestHand_Mirrored(t *testing.T) {
	hand := PinchHand(Right, 0.3, 0.6)
	mirrored := hand.Mirrored()

	if mirrored.Handedness != Right {
		t.Errorf("mirroring must not change handedness, got %v", mirrored.Handedness)
	}
	if got := mirrored.Points[IndexTip].X; got != 0.7 {
		t.Errorf("expected mirrored x 0.7, got %f", got)
	}
	if got := mirrored.Points[IndexTip].Y; got != 0.6 {
		t.Errorf("expected y unchanged at 0.6, got %f", got)
	}
	if hand.Points[IndexTip].X != 0.3 {
		t.Error("Mirrored must not modify the original hand")
	}
}

func TestConnections(t *testing.T) {
	if len(Connections) != 23 {
		t.Errorf("expected 23 bones, got %d", len(Connections))
	}
	for _, c := range Connections {
		if c[0] < 0 || c[0] >= NumLandmarks || c[1] < 0 || c[1] >= NumLandmarks {
			t.Errorf("connection %v out of range", c)
		}
	}
}

func TestMockSource(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("plays steps then repeats the last hands", func(t *testing.T) {
		src := NewMockSource()
		src.Push(OpenHand(Left))
		src.Push(OpenHand(Left), OpenHand(Right))

		for i, want := range []int{1, 2, 2} {
			res, err := src.Detect(ctx, now)
			if err != nil {
				t.Fatalf("step %d: unexpected error: %v", i, err)
			}
			if len(res.Hands) != want {
				t.Errorf("step %d: expected %d hands, got %d", i, want, len(res.Hands))
			}
			if !res.Timestamp.Equal(now) {
				t.Errorf("step %d: timestamp not carried through", i)
			}
		}
		if src.Calls() != 3 {
			t.Errorf("expected 3 calls, got %d", src.Calls())
		}
	})

	t.Run("scripted error", func(t *testing.T) {
		src := NewMockSource()
		boom := errors.New("boom")
		src.PushError(boom)

		if _, err := src.Detect(ctx, now); !errors.Is(err, boom) {
			t.Errorf("expected %v, got %v", boom, err)
		}
	})

	t.Run("delay honors cancellation", func(t *testing.T) {
		src := NewMockSource()
		src.SetDelay(time.Hour)
		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()

		if _, err := src.Detect(cctx, now); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("closed source", func(t *testing.T) {
		src := NewMockSource()
		src.Close()

		if _, err := src.Detect(ctx, now); !errors.Is(err, ErrSourceClosed) {
			t.Errorf("expected ErrSourceClosed, got %v", err)
		}
	})

	t.Run("implements Source interface", func(t *testing.T) {
		var _ Source = (*MockSource)(nil)
	})
}

func TestReplaySource(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	if err := EncodeFrame(&buf, []Hand{OpenHand(Left)}); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	if err := EncodeFrame(&buf, nil); err != nil {
		t.Fatalf("EncodeFrame: %v", err)
	}
	recording := buf.String()

	t.Run("plays frames in order then EOF", func(t *testing.T) {
		src, err := NewReplaySource(strings.NewReader(recording), false)
		if err != nil {
			t.Fatalf("NewReplaySource: %v", err)
		}
		if src.Len() != 2 {
			t.Fatalf("expected 2 frames, got %d", src.Len())
		}
		src.Open(ctx)

		res, err := src.Detect(ctx, time.Now())
		if err != nil || len(res.Hands) != 1 || res.Hands[0].Handedness != Left {
			t.Fatalf("frame 0 = %+v, %v", res, err)
		}
		res, err = src.Detect(ctx, time.Now())
		if err != nil || len(res.Hands) != 0 {
			t.Fatalf("frame 1 = %+v, %v", res, err)
		}
		if _, err := src.Detect(ctx, time.Now()); !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF past the end, got %v", err)
		}
	})

	t.Run("loops", func(t *testing.T) {
		src, _ := NewReplaySource(strings.NewReader(recording), true)
		src.Open(ctx)
		for i := 0; i < 5; i++ {
			if _, err := src.Detect(ctx, time.Now()); err != nil {
				t.Fatalf("iteration %d: %v", i, err)
			}
		}
	})

	t.Run("bad line reports its number", func(t *testing.T) {
		_, err := NewReplaySource(strings.NewReader(recording+"{nope\n"), false)
		if err == nil || !strings.Contains(err.Error(), "line 3") {
			t.Errorf("expected line 3 error, got %v", err)
		}
	})
}

func TestReplaySource_Pacing(t *testing.T) {
	ctx := context.Background()
	const interval = 10 * time.Millisecond

	var buf bytes.Buffer
	for i := 0; i < 2; i++ {
		if err := EncodeFrame(&buf, []Hand{OpenHand(Right)}); err != nil {
			t.Fatalf("EncodeFrame: %v", err)
		}
	}
	recording := buf.String()

	t.Run("frames arrive no faster than the interval", func(t *testing.T) {
		src, err := NewReplaySource(strings.NewReader(recording+recording), false)
		if err != nil {
			t.Fatalf("NewReplaySource: %v", err)
		}
		src.SetInterval(interval)
		src.Open(ctx)

		start := time.Now()
		for i := 0; i < src.Len(); i++ {
			if _, err := src.Detect(ctx, time.Now()); err != nil {
				t.Fatalf("frame %d: %v", i, err)
			}
		}
		if took, want := time.Since(start), time.Duration(src.Len()-1)*interval; took < want {
			t.Errorf("%d frames took %v, want at least %v", src.Len(), took, want)
		}
	})

	t.Run("looping keeps the pace", func(t *testing.T) {
		src, _ := NewReplaySource(strings.NewReader(recording), true)
		src.SetInterval(interval)
		src.Open(ctx)

		const calls = 6
		start := time.Now()
		for i := 0; i < calls; i++ {
			if _, err := src.Detect(ctx, time.Now()); err != nil {
				t.Fatalf("call %d: %v", i, err)
			}
		}
		if took, want := time.Since(start), (calls-1)*interval; took < want {
			t.Errorf("%d looped frames took %v, want at least %v", calls, took, want)
		}
	})

	t.Run("default interval matches the camera rate", func(t *testing.T) {
		src, _ := NewReplaySource(strings.NewReader(recording), false)
		src.Open(ctx)

		start := time.Now()
		src.Detect(ctx, time.Now())
		src.Detect(ctx, time.Now())
		if took := time.Since(start); took < DefaultReplayInterval {
			t.Errorf("two frames took %v, want at least %v", took, DefaultReplayInterval)
		}
	})

	t.Run("waiting honors cancellation", func(t *testing.T) {
		src, _ := NewReplaySource(strings.NewReader(recording), true)
		src.SetInterval(time.Hour)
		src.Open(ctx)
		if _, err := src.Detect(ctx, time.Now()); err != nil {
			t.Fatalf("first frame: %v", err)
		}

		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		if _, err := src.Detect(cctx, time.Now()); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	})

	t.Run("zero interval is unpaced", func(t *testing.T) {
		src, _ := NewReplaySource(strings.NewReader(recording), true)
		src.SetInterval(0)
		src.Open(ctx)

		start := time.Now()
		for i := 0; i < 100; i++ {
			src.Detect(ctx, time.Now())
		}
		if took := time.Since(start); took > time.Second {
			t.Errorf("unpaced replay took %v", took)
		}
	})
}

func TestDecodeFrame(t *testing.T) {
	line := []byte(`{"hands":[{"points":[{"x":0.5,"y":0.5,"z":0}],"handedness":"Right","score":0.8}]}`)

	hands, err := DecodeFrame(line)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("expected 1 hand, got %d", len(hands))
	}
	if hands[0].Valid() {
		t.Error("a one-point hand must stay invalid after decoding")
	}

	if _, err := DecodeFrame([]byte("not json")); err == nil {
		t.Error("expected parse error")
	}
}
