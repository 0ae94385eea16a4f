package server

import (
	"fmt"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/hologram/internal/capture"
)

// FrameSource hands out copies of the latest camera frame.
type FrameSource interface {
	LatestFrame() (gocv.Mat, bool)
}

// StreamHandler serves the camera preview as MJPEG, mirrored like a selfie view.
type StreamHandler struct {
	source   FrameSource
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler over source.
func NewStreamHandler(source FrameSource) *StreamHandler {
	return &StreamHandler{source: source, interval: 66 * time.Millisecond} // ~15 FPS
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		if err := h.writeFrame(w); err != nil {
			return
		}
	}
}

// writeFrame writes one multipart section. Missing or unencodable frames are
// skipped; only write failures end the stream.
func (h *StreamHandler) writeFrame(w http.ResponseWriter) error {
	frame, ok := h.source.LatestFrame()
	if !ok {
		return nil
	}
	mirrored := capture.Mirror(&frame)
	frame.Close()
	defer mirrored.Close()

	buf, err := gocv.IMEncode(".jpg", mirrored)
	if err != nil {
		return nil
	}
	defer buf.Close()

	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", buf.Len()); err != nil {
		return err
	}
	if _, err := w.Write(buf.GetBytes()); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
