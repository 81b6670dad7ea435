package process

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

const initialScanBuffer = 64 * 1024

// newLineScanner returns a scanner yielding lines without "\n" or "\r\n".
// Lines longer than maxLine bytes are yielded in chunks of at most maxLine
// bytes, cut on a UTF-8 boundary where possible.
func newLineScanner(r io.Reader, maxLine int) *bufio.Scanner {
	s := bufio.NewScanner(r)
	// Room for a full line plus its "\r\n" terminator.
	limit := maxLine + 2
	initial := initialScanBuffer
	if limit < initial {
		initial = limit
	}
	s.Buffer(make([]byte, 0, initial), limit)
	s.Split(splitLines(maxLine))
	return s
}

func splitLines(maxLine int) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexByte(data, '\n'); i >= 0 && (i <= maxLine || i == maxLine+1 && data[maxLine] == '\r') {
			return i + 1, dropCR(data[:i]), nil
		}
		if len(data) == maxLine+1 && data[maxLine] == '\r' {
			if atEOF {
				return len(data), data[:maxLine], nil
			}
			// A "\n" may follow and end the line at exactly maxLine bytes.
			return 0, nil, nil
		}
		if len(data) > maxLine {
			n := maxLine
			for n > 0 && !utf8.RuneStart(data[n]) {
				n--
			}
			if n == 0 {
				n = maxLine
			}
			return n, data[:n], nil
		}
		if atEOF {
			return len(data), dropCR(data), nil
		}
		return 0, nil, nil
	}
}

func dropCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}
