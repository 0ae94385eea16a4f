package mediapipe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/hologram/internal/capture"
	"github.com/ayusman/hologram/internal/detector"
)

// CameraSource adapts a Camera and a frame Detector into a Source. It keeps
// a copy of the last frame it read for preview streams.
type CameraSource struct {
	camera capture.Camera
	det    Detector

	mu   sync.Mutex
	last *gocv.Mat
}

// NewCameraSource creates a Source that reads one camera frame per Detect call.
func NewCameraSource(camera capture.Camera, d Detector) *CameraSource {
	return &CameraSource{camera: camera, det: d}
}

// Open opens the camera.
func (s *CameraSource) Open(ctx context.Context) error {
	if err := s.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	return nil
}

// Detect reads the current frame and runs the detector on it.
func (s *CameraSource) Detect(ctx context.Context, ts time.Time) (detector.Result, error) {
	frame, err := s.camera.ReadFrame()
	if err != nil {
		return detector.Result{}, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()
	s.keep(frame)

	hands, err := s.det.Detect(ctx, frame)
	if err != nil {
		return detector.Result{}, fmt.Errorf("detect hands: %w", err)
	}
	return detector.Result{Timestamp: ts, Hands: hands}, nil
}

func (s *CameraSource) keep(frame *gocv.Mat) {
	clone := frame.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last != nil {
		s.last.Close()
	}
	s.last = &clone
}

// LatestFrame returns a copy of the most recent camera frame. The caller
// closes it. ok is false until the first Detect call has read a frame.
func (s *CameraSource) LatestFrame() (gocv.Mat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return gocv.Mat{}, false
	}
	return s.last.Clone(), true
}

// Close releases the detector and the camera.
func (s *CameraSource) Close() error {
	s.mu.Lock()
	if s.last != nil {
		s.last.Close()
		s.last = nil
	}
	s.mu.Unlock()

	detErr := s.det.Close()
	camErr := s.camera.Close()
	if detErr != nil {
		return fmt.Errorf("close detector: %w", detErr)
	}
	if camErr != nil {
		return fmt.Errorf("close camera: %w", camErr)
	}
	return nil
}
