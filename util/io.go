package util

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
)

// MaxLineSize bounds a single line read by ForEachLine (64 KiB).
const MaxLineSize = 64 * 1024

// ForEachLine calls fn with every line read from r, without the
// trailing newline or carriage return.  It stops at EOF, at the first
// read error, or at the first error returned by fn.
func ForEachLine(r io.Reader, fn func(line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxLineSize)
	for sc.Scan() {
		if err := fn(strings.TrimSuffix(sc.Text(), "\r")); err != nil {
			return err
		}
	}
	return sc.Err()
}

// IsHarmless returns true for errors that are expected during shutdown.
func IsHarmless(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	// net.OpError wrapping "use of closed network connection"
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}
