package detector

import (
	"context"
	"errors"
	"time"
)

// ErrSourceClosed is returned by a Source after Close.
var ErrSourceClosed = errors.New("detection source is closed")

// Result is one detection frame: zero, one or two hands observed at Timestamp.
type Result struct {
	Timestamp time.Time `json:"timestamp"`
	Hands     []Hand    `json:"hands"`
}

// Source supplies detection results on request. Detect may block for as long
// as the underlying detector needs; only ctx can interrupt it.
type Source interface {
	// Open acquires whatever the source needs (camera, model process).
	// A failure here is an initialization failure for the whole session.
	Open(ctx context.Context) error

	// Detect returns the hands visible at ts.
	Detect(ctx context.Context, ts time.Time) (Result, error)

	// Close releases any resources held by the source.
	Close() error
}
