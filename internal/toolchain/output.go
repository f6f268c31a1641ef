package toolchain

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// Stream identifies the pipe a line of output arrived on.
type Stream int

const (
	// StreamStdout is standard output.
	StreamStdout Stream = iota
	// StreamStderr is standard error.
	StreamStderr
)

// String returns the stream name.
func (s Stream) String() string {
	switch s {
	case StreamStdout:
		return "stdout"
	case StreamStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Line is a single line of captured tool output.
type Line struct {
	// Content is the line content without the trailing newline.
	Content string

	// Stream identifies the source pipe.
	Stream Stream
}

const (
	// DefaultCaptureLimit is the default byte budget per job.
	DefaultCaptureLimit = 1 << 20

	// TruncationNotice ends rendered content when lines were dropped.
	TruncationNotice = "[output truncated]"

	// maxLineSize bounds a single scanned line.
	maxLineSize = 256 * 1024
)

// Capture accumulates child process output line by line.
//
// Retention stops once the byte budget is exhausted. Readers are still
// drained to EOF so the child never blocks on a full pipe.
type Capture struct {
	lines     []Line
	limit     int
	size      int
	truncated bool

	mu sync.RWMutex
}

// NewCapture creates a capture with the given byte budget.
func NewCapture(limit int) *Capture {
	if limit <= 0 {
		limit = DefaultCaptureLimit
	}
	return &Capture{
		lines: make([]Line, 0, 64),
		limit: limit,
	}
}

// Consume reads r to EOF, retaining each line under the byte budget.
// Returns any scanner error, such as a line exceeding the line limit.
func (c *Capture) Consume(r io.Reader, stream Stream) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		c.add(scanner.Text(), stream)
	}

	return scanner.Err()
}

func (c *Capture) add(content string, stream Stream) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.truncated {
		return
	}

	if c.size+len(content) > c.limit {
		c.truncated = true
		return
	}

	c.size += len(content) + 1
	c.lines = append(c.lines, Line{Content: content, Stream: stream})
}

// Lines returns every retained line in arrival order.
func (c *Capture) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]Line, len(c.lines))
	copy(result, c.lines)
	return result
}

// StreamLines returns the content of retained lines from one stream.
func (c *Capture) StreamLines(stream Stream) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []string
	for _, line := range c.lines {
		if line.Stream == stream {
			result = append(result, line.Content)
		}
	}
	return result
}

// Content joins the retained lines of one stream with newlines.
// A truncation notice is appended when lines were dropped.
func (c *Capture) Content(stream Stream) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var b strings.Builder
	for _, line := range c.lines {
		if line.Stream != stream {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.Content)
	}

	if c.truncated {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(TruncationNotice)
	}

	return b.String()
}

// Truncated reports whether any output was dropped.
func (c *Capture) Truncated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.truncated
}
