package detector

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// DefaultReplayInterval paces replays at the camera's 30 frames per second.
const DefaultReplayInterval = time.Second / 30

// ReplaySource plays back recorded detection frames, one JSON object per
// line in the same shape the MediaPipe service emits ({"hands": [...]}).
// Frames are handed out no faster than one per interval, the way a live
// camera delivers them.
type ReplaySource struct {
	mu       sync.Mutex
	frames   [][]Hand
	index    int
	loop     bool
	closed   bool
	interval time.Duration
	next     time.Time
}

// NewReplaySource reads every frame from r up front.
func NewReplaySource(r io.Reader, loop bool) (*ReplaySource, error) {
	var frames [][]Hand
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		hands, err := DecodeFrame(raw)
		if err != nil {
			return nil, fmt.Errorf("replay line %d: %w", line, err)
		}
		frames = append(frames, hands)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	return &ReplaySource{frames: frames, loop: loop, interval: DefaultReplayInterval}, nil
}

// SetInterval sets the minimum time between two frames. Zero or less
// replays as fast as Detect is called.
func (s *ReplaySource) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
}

// Len returns the number of recorded frames.
func (s *ReplaySource) Len() int {
	return len(s.frames)
}

// Open implements Source.
func (s *ReplaySource) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = 0
	s.closed = false
	s.next = time.Time{}
	return nil
}

// Detect returns the next recorded frame, waiting until its turn comes up.
// Past the end it returns io.EOF unless the source loops.
func (s *ReplaySource) Detect(ctx context.Context, ts time.Time) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	wait := time.Until(s.next)
	s.mu.Unlock()

	if wait > 0 {
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return Result{}, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, ErrSourceClosed
	}
	if s.index >= len(s.frames) {
		if !s.loop || len(s.frames) == 0 {
			return Result{}, io.EOF
		}
		s.index = 0
	}

	hands := s.frames[s.index]
	s.index++
	if s.interval > 0 {
		s.next = time.Now().Add(s.interval)
	}
	return Result{Timestamp: ts, Hands: hands}, nil
}

// Close implements Source.
func (s *ReplaySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// EncodeFrame writes hands as one replay line.
func EncodeFrame(w io.Writer, hands []Hand) error {
	data, err := json.Marshal(struct {
		Hands []Hand `json:"hands"`
	}{Hands: hands})
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// DecodeFrame parses one detection line, the shape EncodeFrame writes and
// the MediaPipe service replies with. Point counts are kept as reported so
// that short detections can be told apart from real ones downstream.
func DecodeFrame(line []byte) ([]Hand, error) {
	var response struct {
		Hands []Hand `json:"hands"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return response.Hands, nil
}
