package util

import (
	"bytes"
	"io"
	"testing"
)

// BenchmarkForEachLine measures line scanning throughput for console
// input, the hot path of the line client.
func BenchmarkForEachLine(b *testing.B) {
	payload := bytes.Repeat([]byte("hello relay partner\n"), 1024)

	b.SetBytes(int64(len(payload)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		ForEachLine(bytes.NewReader(payload), func(string) error { return nil }) //nolint:errcheck
	}
}

// BenchmarkLogger_Filtered measures the cost of a log call below the
// configured verbosity.
func BenchmarkLogger_Filtered(b *testing.B) {
	l := NewLogger(0)
	l.SetOutput(io.Discard)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Debug("frame %d", i)
	}
}
