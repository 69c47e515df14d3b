package genai

import (
	"context"
	"io"
	"sync"
)

type chunk struct {
	text string
	err  error
}

// Stream is a pull-based sequence of generated text chunks. Recv returns
// io.EOF after the final chunk, or the producer's error exactly once. Close
// stops the producer and releases backend resources; it is safe to call more
// than once and after EOF.
type Stream struct {
	ch        chan chunk
	done      chan struct{}
	closeOnce sync.Once
}

// NewPipe returns a connected Stream and its producer half. Backend clients
// and test stubs feed chunks through the writer.
func NewPipe() (*Stream, *StreamWriter) {
	s := &Stream{ch: make(chan chunk, 1), done: make(chan struct{})}
	return s, &StreamWriter{s: s}
}

// Recv blocks until the next chunk, end of stream, or ctx cancellation.
func (s *Stream) Recv(ctx context.Context) (string, error) {
	select {
	case c, ok := <-s.ch:
		if !ok {
			return "", io.EOF
		}
		return c.text, c.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close signals the producer to stop. Chunks already buffered are discarded.
func (s *Stream) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// StreamWriter is the producer half of a Stream.
type StreamWriter struct {
	s         *Stream
	closeOnce sync.Once
}

// Send delivers one chunk. It returns false once the consumer has closed the
// stream, at which point the producer should stop and release its resources.
func (w *StreamWriter) Send(text string) bool {
	select {
	case w.s.ch <- chunk{text: text}:
		return true
	case <-w.s.done:
		return false
	}
}

// Fail delivers err as the terminal chunk and ends the stream.
func (w *StreamWriter) Fail(err error) {
	select {
	case w.s.ch <- chunk{err: err}:
	case <-w.s.done:
	}
	w.CloseSend()
}

// CloseSend ends the stream normally; the consumer sees io.EOF.
func (w *StreamWriter) CloseSend() {
	w.closeOnce.Do(func() { close(w.s.ch) })
}

// Done is closed when the consumer abandons the stream.
func (w *StreamWriter) Done() <-chan struct{} { return w.s.done }
