package sse

import "bytes"

const DEFAULT_MAX_LINE_SIZE = 1 << 20

// LineBuffer reassembles newline-delimited lines from reads that may split a
// line anywhere, including between '\r' and '\n'.
type LineBuffer struct {
	// MaxLineSize bounds the unterminated tail kept between reads. A longer
	// line is dropped and counted in Dropped. Zero means DEFAULT_MAX_LINE_SIZE.
	MaxLineSize int
	Dropped     int

	pending  []byte
	skipping bool
}

// Feed appends chunk and returns every line it completed, without line
// terminators.
func (b *LineBuffer) Feed(chunk []byte) []string {
	var lines []string
	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			b.hold(chunk)
			break
		}
		if b.skipping {
			b.skipping = false
		} else {
			b.pending = append(b.pending, chunk[:i]...)
			lines = append(lines, string(bytes.TrimRight(b.pending, "\r")))
		}
		b.pending = b.pending[:0]
		chunk = chunk[i+1:]
	}
	return lines
}

// Flush returns the unterminated tail, if any, and resets the buffer.
func (b *LineBuffer) Flush() (string, bool) {
	defer b.reset()
	if b.skipping || len(b.pending) == 0 {
		return "", false
	}
	return string(bytes.TrimRight(b.pending, "\r")), true
}

// Pending is the size of the unterminated tail.
func (b *LineBuffer) Pending() int {
	return len(b.pending)
}

func (b *LineBuffer) hold(part []byte) {
	if b.skipping {
		return
	}
	limit := b.MaxLineSize
	if limit <= 0 {
		limit = DEFAULT_MAX_LINE_SIZE
	}
	if len(b.pending)+len(part) > limit {
		b.Dropped++
		b.skipping = true
		b.pending = b.pending[:0]
		return
	}
	b.pending = append(b.pending, part...)
}

func (b *LineBuffer) reset() {
	b.pending = b.pending[:0]
	b.skipping = false
}
