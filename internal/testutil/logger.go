package testutil

import (
	"bytes"
	"log/slog"
)

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// CaptureLogger records debug and above as JSON lines in the returned
// buffer. The buffer is not safe for concurrent writers beyond what the
// handler serializes.
func CaptureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}
