package osc

import (
	"bytes"
	"fmt"
	"io"
)

////
// De/Encoding helpers
////

// padBytesNeeded determines how many zero bytes are needed to fill up to
// the next 4 byte boundary.
func padBytesNeeded(elementLen int) int {
	return (4 - (elementLen % 4)) % 4
}

// writePaddedString writes str to b as a NUL-terminated string followed by
// enough zero bytes to reach a 4-byte boundary.
func writePaddedString(str string, b *bytes.Buffer) {
	b.WriteString(str)
	n := len(str) + 1
	for i := 0; i < 1+padBytesNeeded(n); i++ {
		b.WriteByte(0)
	}
}

// parsePaddedString reads a padded string from data and returns the string
// and the total number of bytes consumed, terminator and padding included.
func parsePaddedString(data []byte) (string, int, error) {
	pos := bytes.IndexByte(data, 0)
	if pos == -1 {
		return "", 0, fmt.Errorf("parsePaddedString: missing terminator: %w", io.ErrUnexpectedEOF)
	}
	n := pos + 1
	n += padBytesNeeded(n)
	if n > len(data) {
		return "", 0, fmt.Errorf("parsePaddedString: truncated padding: %w", io.ErrUnexpectedEOF)
	}
	return string(data[:pos]), n, nil
}
