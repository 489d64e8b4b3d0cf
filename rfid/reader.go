// Package rfid reads badge UIDs from an RC522 reader on the SPI bus.
package rfid

import (
	"encoding/hex"
	"strings"
	"time"
)

// Reader is a badge reader. ReadUID blocks up to timeout and returns the
// empty string when no badge was presented. Read errors are transient:
// the poll loop retries on the next tick.
type Reader interface {
	ReadUID(timeout time.Duration) (string, error)
	Close() error
}

// FormatUID renders raw UID bytes the way the backend stores badges:
// uppercase hex without separators.
func FormatUID(uid []byte) string {
	return strings.ToUpper(hex.EncodeToString(uid))
}

// noopReader stands in when no RC522 hardware is present (developer mode).
// It never reports a badge.
type noopReader struct{}

// NewNoop returns a reader that never detects a badge.
func NewNoop() Reader {
	return noopReader{}
}

func (noopReader) ReadUID(time.Duration) (string, error) { return "", nil }
func (noopReader) Close() error                          { return nil }
