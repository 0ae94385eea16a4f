package main

import (
	"io"
	"os"
	"testing"

	"github.com/ayusman/hologram/internal/logging"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	l, err := logging.New(io.Discard, "error")
	if err != nil {
		t.Fatal(err)
	}
	return l
}
